package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/backend/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAccessGate(t *testing.T) {
	viper.Set("jwt.secret_key", testSecret)
	defer viper.Set("jwt.secret_key", "")

	t.Run("valid token places caller in context", func(t *testing.T) {
		var got models.Caller
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok = CallerFrom(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": 7, "role": models.RoleUser}))
		rec := httptest.NewRecorder()

		AccessGate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.True(t, ok)
		assert.Equal(t, int64(7), got.UserID)
		assert.Equal(t, models.RoleUser, got.Role)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		rec := httptest.NewRecorder()

		AccessGate(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		AccessGate(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key is rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": 7,
			"role":    models.RoleUser,
		}).SignedString([]byte("another-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		AccessGate(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unrecognized role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": 7, "role": "auditor"}))
		rec := httptest.NewRecorder()

		AccessGate(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("token without user id is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"role": models.RoleUser}))
		rec := httptest.NewRecorder()

		AccessGate(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	viper.Set("jwt.secret_key", testSecret)
	defer viper.Set("jwt.secret_key", "")

	handler := AccessGate(RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("matching role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": 1, "role": models.RoleAdmin}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("mismatched role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": 7, "role": models.RoleUser}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no caller in context is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
		rec := httptest.NewRecorder()

		RequireRole(models.RoleAdmin)(rejectReached(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func rejectReached(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached past the gate")
	})
}
