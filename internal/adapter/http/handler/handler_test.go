package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports"
	"github.com/DmitriySvyatov/WalletApi/internal/core/ports/mocks"
	"github.com/DmitriySvyatov/WalletApi/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerDeps struct {
	h         *WalletHandler
	lifecycle *mocks.MockWalletLifecycle
	mutator   *mocks.MockBalanceMutator
	query     *mocks.MockBalanceQuery
}

func setupHandler(t *testing.T) *handlerDeps {
	ctrl := gomock.NewController(t)
	d := &handlerDeps{
		lifecycle: mocks.NewMockWalletLifecycle(ctrl),
		mutator:   mocks.NewMockBalanceMutator(ctrl),
		query:     mocks.NewMockBalanceQuery(ctrl),
	}
	d.h = NewWalletHandler(d.lifecycle, d.mutator, d.query)
	return d
}

func newContext(method, path, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()

	d.lifecycle.EXPECT().CreateWallet(gomock.Any(), int64(10050)).
		Return(&domain.Wallet{ID: id, Balance: 10050}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/wallets", `{"initialBalance": 100.50}`)
	d.h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":100.50`)
	data := decodeData(t, w)
	assert.Equal(t, id.String(), data["id"])
}

func TestCreate_ZeroBalance(t *testing.T) {
	d := setupHandler(t)

	d.lifecycle.EXPECT().CreateWallet(gomock.Any(), int64(0)).
		Return(&domain.Wallet{ID: uuid.New()}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/wallets", `{"initialBalance": 0}`)
	d.h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0.00`)
}

func TestCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty body", ``, "REQ_001"},
		{"missing field", `{}`, "REQ_001"},
		{"not a number", `{"initialBalance":"ten"}`, "REQ_001"},
		{"too precise", `{"initialBalance":1.005}`, "WLT_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupHandler(t)
			c, w := newContext(http.MethodPost, "/api/v1/wallets", tt.body)
			d.h.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestCreate_NegativeBalance(t *testing.T) {
	d := setupHandler(t)

	d.lifecycle.EXPECT().CreateWallet(gomock.Any(), int64(-500)).
		Return(nil, apperror.ErrInvalidAmount("initial balance cannot be negative"))

	c, w := newContext(http.MethodPost, "/api/v1/wallets", `{"initialBalance": -5}`)
	d.h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WLT_003", errorCode(t, w))
}

func TestCreate_IdentifierExhaustion(t *testing.T) {
	d := setupHandler(t)

	d.lifecycle.EXPECT().CreateWallet(gomock.Any(), int64(100)).
		Return(nil, apperror.ErrIdentifierExhaustion(5))

	c, w := newContext(http.MethodPost, "/api/v1/wallets", `{"initialBalance": 1}`)
	d.h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "WLT_006", errorCode(t, w))
}

// --- ApplyOperation ---

func TestApplyOperation_Success(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()

	d.mutator.EXPECT().ApplyOperation(gomock.Any(), ports.OperationRequest{
		WalletID: id.String(),
		Type:     "deposit",
		Amount:   5000,
	}).Return(&domain.Wallet{ID: id, Balance: 15000, Version: 3}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/wallets/"+id.String()+"/operations",
		`{"operationType":"deposit","amount":50}`, gin.Param{Key: "id", Value: id.String()})
	d.h.ApplyOperation(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, id.String(), data["walletId"])
	assert.Equal(t, "DEPOSIT", data["operationType"])
	assert.Equal(t, float64(50), data["amount"])
	assert.Equal(t, float64(150), data["balance"])
	assert.Equal(t, float64(3), data["version"])
}

func TestApplyOperation_MalformedID(t *testing.T) {
	d := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/v1/wallets/abc/operations",
		`{"operationType":"DEPOSIT","amount":50}`, gin.Param{Key: "id", Value: "abc"})
	d.h.ApplyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WLT_005", errorCode(t, w))
}

func TestApplyOperation_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperror.ErrWalletNotFound(), http.StatusNotFound, "WLT_001"},
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusBadRequest, "WLT_002"},
		{"unknown type", apperror.ErrUnknownOperationType("TRANSFER"), http.StatusBadRequest, "WLT_004"},
		{"internal", apperror.InternalError(errors.New("db down")), http.StatusInternalServerError, "SYS_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupHandler(t)
			id := uuid.New()

			d.mutator.EXPECT().ApplyOperation(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			c, w := newContext(http.MethodPost, "/", `{"operationType":"WITHDRAW","amount":1}`,
				gin.Param{Key: "id", Value: id.String()})
			d.h.ApplyOperation(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}

func TestApplyOperation_AmountTooPrecise(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()

	c, w := newContext(http.MethodPost, "/", `{"operationType":"DEPOSIT","amount":0.001}`,
		gin.Param{Key: "id", Value: id.String()})
	d.h.ApplyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WLT_003", errorCode(t, w))
}

func TestApplyOperation_MissingFields(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()

	c, w := newContext(http.MethodPost, "/", `{"amount":1}`, gin.Param{Key: "id", Value: id.String()})
	d.h.ApplyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQ_001", errorCode(t, w))
	assert.Contains(t, w.Body.String(), "operationType")
}

// --- LegacyOperation ---

func TestLegacyOperation_Success(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()

	d.mutator.EXPECT().ApplyOperation(gomock.Any(), ports.OperationRequest{
		WalletID: id.String(),
		Type:     domain.OperationWithdraw,
		Amount:   1025,
	}).Return(&domain.Wallet{ID: id, Balance: 0, Version: 1}, nil)

	body := `{"walletId":"` + id.String() + `","operationType":"WITHDRAW","amount":"10.25"}`
	c, w := newContext(http.MethodPost, "/api/v1/wallet", body)
	d.h.LegacyOperation(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":10.25`)
	assert.Contains(t, w.Body.String(), `"balance":0.00`)
}

func TestLegacyOperation_MalformedWalletID(t *testing.T) {
	d := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/v1/wallet", `{"walletId":"1234","operationType":"WITHDRAW","amount":1}`)
	d.h.LegacyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WLT_005", errorCode(t, w))
}

func TestLegacyOperation_BodyTooLarge(t *testing.T) {
	d := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/v1/wallet", `{"walletId":"`+strings.Repeat("a", 64)+`"}`)
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)
	d.h.LegacyOperation(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQ_001", errorCode(t, w))
}

// --- GetBalance / GetWallet ---

func TestGetBalance_Success(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New().String()

	d.query.EXPECT().GetBalance(gomock.Any(), id).Return(int64(123456), nil)

	c, w := newContext(http.MethodGet, "/api/v1/wallets/"+id+"/balance", "", gin.Param{Key: "id", Value: id})
	d.h.GetBalance(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":1234.56`)
	assert.Equal(t, id, decodeData(t, w)["walletId"])
}

func TestGetBalance_Errors(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New().String()

	d.query.EXPECT().GetBalance(gomock.Any(), id).Return(int64(0), apperror.ErrWalletNotFound())

	c, w := newContext(http.MethodGet, "/", "", gin.Param{Key: "id", Value: id})
	d.h.GetBalance(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newContext(http.MethodGet, "/", "", gin.Param{Key: "id", Value: "not-a-uuid"})
	d.h.GetBalance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "WLT_005", errorCode(t, w))
}

func TestGetWallet_Success(t *testing.T) {
	d := setupHandler(t)
	id := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	d.lifecycle.EXPECT().GetWallet(gomock.Any(), id.String()).Return(&domain.Wallet{
		ID: id, Balance: 700, Version: 2, CreatedAt: created, UpdatedAt: created.Add(time.Hour),
	}, nil)

	c, w := newContext(http.MethodGet, "/", "", gin.Param{Key: "id", Value: id.String()})
	d.h.GetWallet(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(7), data["balance"])
	assert.Equal(t, float64(2), data["version"])
	assert.Equal(t, "2024-01-02T03:04:05Z", data["createdAt"])
	assert.Equal(t, "2024-01-02T04:04:05Z", data["updatedAt"])
}

// --- Health ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Ping(ctx context.Context) error { return s.err }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		checkers []ports.HealthChecker
		status   int
		overall  string
	}{
		{"no dependencies", nil, http.StatusOK, "healthy"},
		{"all healthy", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "redis"}}, http.StatusOK, "healthy"},
		{"one failing", []ports.HealthChecker{stubChecker{name: "postgresql"}, stubChecker{name: "kafka", err: errors.New("no brokers")}}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodGet, "/health", "")
			HealthCheck(tt.checkers...)(c)

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.overall, resp["status"])
		})
	}
}
