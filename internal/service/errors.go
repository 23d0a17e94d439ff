package service

import (
	"context"
	"errors"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"

	"github.com/rs/zerolog"
)

// toAppError maps domain and store errors onto the API taxonomy. Anything
// unrecognised is logged with the wallet and operation and becomes SYS_001.
func toAppError(log zerolog.Logger, err error, walletID string, op string) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domain.ErrWalletNotFound):
		return apperror.ErrWalletNotFound()
	case errors.Is(err, domain.ErrInsufficientFunds):
		return apperror.ErrInsufficientFunds()
	case errors.Is(err, domain.ErrNonPositiveAmount):
		return apperror.ErrInvalidAmount("must be positive")
	case errors.Is(err, domain.ErrBalanceOverflow):
		return apperror.ErrInvalidAmount("resulting balance out of range")
	case errors.Is(err, domain.ErrNegativeBalance):
		return apperror.ErrInvalidAmount("balance cannot be negative")
	case errors.Is(err, domain.ErrUnknownOperation):
		return apperror.ErrUnknownOperationType(op)
	case errors.Is(err, domain.ErrInvalidWalletID):
		return apperror.ErrInvalidIdentifier()
	}

	evt := log.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		evt = log.Warn()
	}
	evt.Err(err).
		Str("wallet_id", walletID).
		Str("operation", op).
		Msg("wallet store failure")
	return apperror.InternalError(err)
}
