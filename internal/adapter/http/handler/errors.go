package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DmitriySvyatov/WalletApi/internal/adapter/http/dto"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"
	"github.com/DmitriySvyatov/WalletApi/pkg/money"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// bindError converts a gin binding failure into an AppError. A bad wallet id
// keeps its own code; everything else is REQ_001.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == dto.TagWalletID {
				return apperror.ErrInvalidIdentifier()
			}
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		return apperror.Validation(strings.Join(msgs, "; "))
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Validation("request body too large")
	}
	return apperror.Validation("malformed request body: " + err.Error())
}

// toMinor converts a bound decimal amount to minor units.
func toMinor(d *decimal.Decimal) (int64, error) {
	cents, err := money.ToMinor(*d)
	if err != nil {
		return 0, apperror.ErrInvalidAmount(err.Error())
	}
	return cents, nil
}
