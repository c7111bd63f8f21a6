package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamart/jengamart-backend/pkg/auth"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "jengamart-test",
		ExpirationMinutes: 60,
	}
}

func TestAdminAuthAllowsAdminToken(t *testing.T) {
	cfg := authTestConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	var seen *auth.Claims
	handler := AdminAuth(cfg, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := auth.MintToken(cfg, time.Now().UTC(), "ops@jengamart.co.ke", auth.RoleAdmin)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/admin/v1/payouts/generate", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "ops@jengamart.co.ke", seen.Subject)
	assert.Equal(t, auth.RoleAdmin, seen.Role)
}

func TestAdminAuthRejections(t *testing.T) {
	cfg := authTestConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := AdminAuth(cfg, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	vendorToken, err := auth.MintToken(cfg, time.Now().UTC(), "vendor@jengamart.co.ke", "vendor")
	require.NoError(t, err)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	foreignToken, err := auth.MintToken(otherIssuer, time.Now().UTC(), "ops", auth.RoleAdmin)
	require.NoError(t, err)

	expiredToken, err := auth.MintToken(cfg, time.Now().UTC().Add(-2*time.Hour), "ops", auth.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "no header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer scheme", authHeader: "Basic abc123", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "wrong issuer", authHeader: "Bearer " + foreignToken, wantStatus: http.StatusUnauthorized},
		{name: "expired token", authHeader: "Bearer " + expiredToken, wantStatus: http.StatusUnauthorized},
		{name: "non admin role", authHeader: "Bearer " + vendorToken, wantStatus: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/admin/v1/payouts", nil)
			if tc.authHeader != "" {
				r.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestClaimsFromContextWithoutAuth(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, ClaimsFromContext(r.Context()))
}
