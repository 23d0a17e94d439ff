package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindInsufficientFunds
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindInvalidInput:
		return "InvalidInput"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindRateLimited:
		return "RateLimited"
	default:
		return "Internal"
	}
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Kind       Kind   `json:"-"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by code so callers can write
// errors.Is(err, apperror.ErrWalletNotFound()).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// KindOf reports the Kind of the first AppError in err's chain.
// Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ---- Wallet (WLT) ----

func ErrWalletNotFound() *AppError {
	return New(KindNotFound, "WLT_001", "Wallet not found", http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New(KindInsufficientFunds, "WLT_002", "Insufficient balance in wallet", http.StatusBadRequest)
}

func ErrInvalidAmount(reason string) *AppError {
	msg := "Invalid amount"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return New(KindInvalidInput, "WLT_003", msg, http.StatusBadRequest)
}

func ErrUnknownOperationType(op string) *AppError {
	return New(KindInvalidInput, "WLT_004", fmt.Sprintf("Unknown operation type %q", op), http.StatusBadRequest)
}

func ErrInvalidIdentifier() *AppError {
	return New(KindInvalidInput, "WLT_005", "Malformed wallet identifier", http.StatusBadRequest)
}

func ErrIdentifierExhaustion(attempts int) *AppError {
	return New(KindConflict, "WLT_006",
		fmt.Sprintf("Could not allocate a unique wallet id after %d attempts", attempts), http.StatusConflict)
}

// ---- Request (REQ) ----

// Validation returns a REQ_001 error for a malformed request.
func Validation(message string) *AppError {
	return New(KindInvalidInput, "REQ_001", message, http.StatusBadRequest)
}

func ErrRequestInProgress() *AppError {
	return New(KindConflict, "REQ_002", "A request with this idempotency key is already in progress", http.StatusConflict)
}

func ErrIdempotencyKeyMismatch() *AppError {
	return New(KindInvalidInput, "REQ_003",
		"Idempotency key was already used with a different request body", http.StatusUnprocessableEntity)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(KindRateLimited, "RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(KindInternal, "SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
