package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBalanceQuery_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockWalletStore(ctrl)
	svc := NewBalanceQueryService(store, zerolog.Nop())
	ctx := context.Background()
	id := uuid.New()

	store.EXPECT().GetByID(ctx, id).Return(&domain.Wallet{ID: id, Balance: 4200}, nil).Times(2)

	first, err := svc.GetBalance(ctx, id.String())
	require.NoError(t, err)
	second, err := svc.GetBalance(ctx, id.String())
	require.NoError(t, err)

	assert.Equal(t, int64(4200), first)
	assert.Equal(t, first, second)
}

func TestBalanceQuery_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockWalletStore(ctrl)
	svc := NewBalanceQueryService(store, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.GetBalance(ctx, "12345")
	assertAppError(t, err, "WLT_005")

	missing := uuid.New()
	store.EXPECT().GetByID(ctx, missing).Return(nil, domain.ErrWalletNotFound)
	_, err = svc.GetBalance(ctx, missing.String())
	assertAppError(t, err, "WLT_001")

	broken := uuid.New()
	store.EXPECT().GetByID(ctx, broken).Return(nil, errors.New("i/o timeout"))
	_, err = svc.GetBalance(ctx, broken.String())
	assertAppError(t, err, "SYS_001")
}
