package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apiContext "greekgeeks/internal/api/context"
	"greekgeeks/internal/platform/auth"
	"greekgeeks/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	access, err := tokenSvc.GenerateAccessToken("usr_1", "a@example.com")
	require.NoError(t, err)
	refresh, err := tokenSvc.GenerateRefreshToken("usr_1")
	require.NoError(t, err)

	m := NewAuthMiddleware(tokenSvc)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + access, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			m.Handle(func(w http.ResponseWriter, r *http.Request) {
				claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
				assert.Equal(t, "usr_1", claims.UserID)
				w.WriteHeader(http.StatusOK)
			})(rr, req)

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRequestLogger_RecoversPanic(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
