package mobilemoney

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func gatewayFor(t *testing.T, server *httptest.Server) *Gateway {
	t.Helper()

	gw, err := NewGateway(config.MobileMoneyConfig{
		BaseURL:  server.URL,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
		Provider: "mpesa",
	}, testLogger())
	require.NoError(t, err)
	return gw
}

func testOrder() payments.PayoutOrder {
	return payments.PayoutOrder{
		PayoutID:    uuid.New(),
		VendorID:    uuid.New(),
		AmountCents: 13500,
		Currency:    enums.CurrencyKES,
		Provider:    "mpesa",
		Phone:       "+254712345678",
	}
}

func TestNewGatewayValidation(t *testing.T) {
	valid := config.MobileMoneyConfig{BaseURL: "https://aggregator.example", APIKey: "key"}

	_, err := NewGateway(valid, nil)
	require.Error(t, err)

	missingURL := valid
	missingURL.BaseURL = "  "
	_, err = NewGateway(missingURL, testLogger())
	require.ErrorIs(t, err, errBaseURLRequired)

	missingKey := valid
	missingKey.APIKey = ""
	_, err = NewGateway(missingKey, testLogger())
	require.ErrorIs(t, err, errAPIKeyRequired)
}

func TestGatewayPayoutSuccess(t *testing.T) {
	order := testOrder()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/disbursements", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req disburseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, order.PayoutID.String(), req.IdempotencyKey)
		assert.Equal(t, "mpesa", req.Provider)
		assert.Equal(t, "+254712345678", req.Phone)
		assert.Equal(t, int64(13500), req.AmountCents)
		assert.Equal(t, "KES", req.Currency)

		json.NewEncoder(w).Encode(map[string]any{
			"status":          "success",
			"transaction_ref": "MPESA-ABC123",
		})
	}))
	defer server.Close()

	receipt, err := gatewayFor(t, server).Payout(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "MPESA-ABC123", receipt.TransactionRef)
}

func TestGatewayPayoutFallsBackToDefaultProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req disburseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mpesa", req.Provider)

		json.NewEncoder(w).Encode(map[string]any{
			"status":          "success",
			"transaction_ref": "MPESA-XYZ",
		})
	}))
	defer server.Close()

	order := testOrder()
	order.Provider = ""

	_, err := gatewayFor(t, server).Payout(context.Background(), order)
	require.NoError(t, err)
}

func TestGatewayPayoutRejectedByAggregator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "failed",
			"error": map[string]string{
				"code":    "INSUFFICIENT_FLOAT",
				"message": "float balance too low",
			},
		})
	}))
	defer server.Close()

	_, err := gatewayFor(t, server).Payout(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "float balance too low")
}

func TestGatewayPayoutAggregatorUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"status": "error"})
	}))
	defer server.Close()

	_, err := gatewayFor(t, server).Payout(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGatewayPayoutMissingTransactionRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	}))
	defer server.Close()

	_, err := gatewayFor(t, server).Payout(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "missing transaction ref")
}

func TestGatewayPayoutConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := gatewayFor(t, server).Payout(context.Background(), testOrder())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestGatewayPayoutValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid orders must not reach the aggregator")
	}))
	defer server.Close()

	gw, err := NewGateway(config.MobileMoneyConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	}, testLogger())
	require.NoError(t, err)

	t.Run("no provider anywhere", func(t *testing.T) {
		order := testOrder()
		order.Provider = ""
		_, err := gw.Payout(context.Background(), order)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("missing phone", func(t *testing.T) {
		order := testOrder()
		order.Phone = ""
		_, err := gw.Payout(context.Background(), order)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("non positive amount", func(t *testing.T) {
		order := testOrder()
		order.AmountCents = 0
		_, err := gw.Payout(context.Background(), order)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}
