package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(KindInsufficientFunds, "WLT_002", "Insufficient funds", http.StatusBadRequest),
			expected: "[WLT_002] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(KindInternal, "SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(KindInternal, "SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New(KindInvalidInput, "WLT_003", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("apply: %w", ErrWalletNotFound())

	assert.True(t, errors.Is(err, ErrWalletNotFound()))
	assert.False(t, errors.Is(err, ErrInsufficientFunds()))
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		kind       Kind
		code       string
		httpStatus int
	}{
		{"WalletNotFound", ErrWalletNotFound(), KindNotFound, "WLT_001", 404},
		{"InsufficientFunds", ErrInsufficientFunds(), KindInsufficientFunds, "WLT_002", 400},
		{"InvalidAmount", ErrInvalidAmount("must be positive"), KindInvalidInput, "WLT_003", 400},
		{"UnknownOperationType", ErrUnknownOperationType("TRANSFER"), KindInvalidInput, "WLT_004", 400},
		{"InvalidIdentifier", ErrInvalidIdentifier(), KindInvalidInput, "WLT_005", 400},
		{"IdentifierExhaustion", ErrIdentifierExhaustion(5), KindConflict, "WLT_006", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("bad body"), "REQ_001", 400},
		{"RequestInProgress", ErrRequestInProgress(), "REQ_002", 409},
		{"IdempotencyKeyMismatch", ErrIdempotencyKeyMismatch(), "REQ_003", 422},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInternalError(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	err := InternalError(inner)

	assert.Equal(t, "SYS_001", err.Code)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, KindInternal, err.Kind)
	assert.True(t, errors.Is(err, inner))
	assert.NotContains(t, err.Message, "pg:")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", ErrWalletNotFound())))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestInvalidAmount_Message(t *testing.T) {
	assert.Equal(t, "Invalid amount", ErrInvalidAmount("").Message)
	assert.Equal(t, "Invalid amount: too many decimal places", ErrInvalidAmount("too many decimal places").Message)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "NotFound", KindNotFound.String())
	assert.Equal(t, "Conflict", KindConflict.String())
	assert.Equal(t, "InvalidInput", KindInvalidInput.String())
	assert.Equal(t, "InsufficientFunds", KindInsufficientFunds.String())
	assert.Equal(t, "RateLimited", KindRateLimited.String())
	assert.Equal(t, "Internal", KindInternal.String())
}
