package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"
	"github.com/DmitriySvyatov/WalletApi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderIdempotencyKey is the optional client key on unsafe requests.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay is set on responses served from the store.
	HeaderIdempotentReplay = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
	idempotencyOpTimeout = 2 * time.Second
	// idempotencyLockTTL bounds how long a crashed request blocks its key.
	idempotencyLockTTL = 30 * time.Second
)

// captureWriter tees the response body so it can be stored after the handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key, and answers 409 REQ_002 while the first one is still
// running. A repeated key with a different body gets 422 REQ_003. Requests
// without the header pass straight through. Responses with status >= 500 are
// not stored so the client can retry them.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if clientKey == "" {
			c.Next()
			return
		}
		if len(clientKey) > maxIdempotencyKeyLen {
			response.Abort(c, apperror.Validation("Idempotency-Key is too long"))
			return
		}

		fingerprint, err := hashBody(c)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				response.Abort(c, apperror.Validation("request body too large"))
				return
			}
			response.Abort(c, apperror.Validation("malformed request body"))
			return
		}

		key := domain.BuildIdempotencyKey(c.Request.Method, c.Request.URL.Path, clientKey)
		ctx := c.Request.Context()
		logger := log.With().Str("idempotency_key", key).Logger()

		stored, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency lookup failed, processing request (degraded mode)")
			c.Next()
			return
		}
		if stored != nil {
			replayIfSame(c, stored, fingerprint)
			return
		}

		reserved, err := store.Reserve(ctx, key, idempotencyLockTTL)
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency reservation failed, processing request (degraded mode)")
			c.Next()
			return
		}
		if !reserved {
			// Either still in flight, or finished between Get and Reserve.
			if stored, err := store.Get(ctx, key); err == nil && stored != nil {
				replayIfSame(c, stored, fingerprint)
				return
			}
			response.Abort(c, apperror.ErrRequestInProgress())
			return
		}

		release := func() {
			relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyOpTimeout)
			defer cancel()
			if err := store.Release(relCtx, key); err != nil {
				logger.Warn().Err(err).Msg("failed to release idempotency key")
			}
		}

		defer func() {
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			release()
			return
		}

		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyOpTimeout)
		defer cancel()
		err = store.Save(saveCtx, key, &domain.IdempotentResponse{
			Status:      status,
			RequestHash: fingerprint,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			CreatedAt:   time.Now().UTC(),
		}, ttl)
		if err != nil {
			logger.Error().Err(err).Msg("failed to store idempotent response")
			release()
		}
	}
}

// hashBody reads the request body, puts it back for the handler and returns
// its SHA-256.
func hashBody(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replayIfSame(c *gin.Context, stored *domain.IdempotentResponse, fingerprint string) {
	if stored.RequestHash != "" && stored.RequestHash != fingerprint {
		response.Abort(c, apperror.ErrIdempotencyKeyMismatch())
		return
	}
	replay(c, stored)
}

func replay(c *gin.Context, stored *domain.IdempotentResponse) {
	c.Header(HeaderIdempotentReplay, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
}
