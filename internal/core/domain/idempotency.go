package domain

import (
	"strings"
	"time"
)

// IdempotentResponse is a stored HTTP response replayed for a repeated
// Idempotency-Key.
type IdempotentResponse struct {
	Status      int       `json:"status"`
	RequestHash string    `json:"request_hash,omitempty"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// BuildIdempotencyKey scopes a client key to the route it was sent to, so the
// same key on a different endpoint is a different request.
func BuildIdempotencyKey(method, route, clientKey string) string {
	return strings.ToUpper(method) + ":" + route + ":" + clientKey
}
