package validators

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
)

type generatePayload struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	body := `{"period_start":"2026-07-01T00:00:00Z","period_end":"2026-08-01T00:00:00Z"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var payload generatePayload
	require.NoError(t, DecodeJSONBody(r, &payload))
	assert.Equal(t, 2026, payload.PeriodStart.Year())
	assert.Equal(t, time.August, payload.PeriodEnd.Month())
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))

	var payload generatePayload
	err := DecodeJSONBody(r, &payload)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	body := `{"period_start":"2026-07-01T00:00:00Z","period_end":"2026-08-01T00:00:00Z","surprise":true}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var payload generatePayload
	err := DecodeJSONBody(r, &payload)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

	var payload generatePayload
	err := DecodeJSONBody(r, &payload)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "period_start")
	assert.Contains(t, details, "period_end")
	assert.Equal(t, "is required", details["period_start"])
}

func TestParseQueryInt(t *testing.T) {
	t.Run("default when absent", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/payouts", nil)
		value, err := ParseQueryInt(r, "limit", 50, 1, 200)
		require.NoError(t, err)
		assert.Equal(t, 50, value)
	})

	t.Run("explicit value", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/payouts?limit=25", nil)
		value, err := ParseQueryInt(r, "limit", 50, 1, 200)
		require.NoError(t, err)
		assert.Equal(t, 25, value)
	})

	t.Run("not numeric", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/payouts?limit=plenty", nil)
		_, err := ParseQueryInt(r, "limit", 50, 1, 200)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("out of range", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/payouts?limit=5000", nil)
		_, err := ParseQueryInt(r, "limit", 50, 1, 200)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

func TestParseQueryTime(t *testing.T) {
	t.Run("absent is nil", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/transactions", nil)
		value, err := ParseQueryTime(r, "from")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("rfc3339", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/transactions?from=2026-07-01T00:00:00Z", nil)
		value, err := ParseQueryTime(r, "from")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, time.July, value.Month())
	})

	t.Run("wrong format", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/transactions?from=2026-07-01", nil)
		_, err := ParseQueryTime(r, "from")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}

func TestPathUUID(t *testing.T) {
	newRequest := func(key, value string) *chi.Context {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		return rctx
	}

	t.Run("valid uuid", func(t *testing.T) {
		id := uuid.New()
		r := httptest.NewRequest("GET", "/vendors/"+id.String()+"/balance", nil)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, newRequest("vendorId", id.String())))

		parsed, err := PathUUID(r, "vendorId")
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/vendors//balance", nil)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, chi.NewRouteContext()))

		_, err := PathUUID(r, "vendorId")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})

	t.Run("not a uuid", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/vendors/abc/balance", nil)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, newRequest("vendorId", "abc")))

		_, err := PathUUID(r, "vendorId")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	})
}
