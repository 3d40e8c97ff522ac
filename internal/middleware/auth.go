package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	"github.com/fraudshield/backend/internal/models"
)

type contextKey string

const callerKey contextKey = "caller"

// AccessGate resolves the caller's identity and role from a bearer
// token and rejects anything with an unknown or missing role before a
// request can reach the services layer. Token issuance happens
// elsewhere; this gate only verifies and extracts claims.
func AccessGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeAuthError(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		caller, err := resolveCaller(parts[1])
		if err != nil {
			writeAuthError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if caller.Role != models.RoleUser && caller.Role != models.RoleAdmin {
			writeAuthError(w, "Unrecognized role", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree behind one role. It assumes
// AccessGate already ran.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok || caller.Role != role {
				writeAuthError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFrom extracts the resolved caller placed in the context by
// AccessGate.
func CallerFrom(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(models.Caller)
	return caller, ok
}

func resolveCaller(tokenString string) (models.Caller, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(viper.GetString("jwt.secret_key")), nil
	})
	if err != nil || !token.Valid {
		return models.Caller{}, jwt.ErrTokenMalformed
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, jwt.ErrTokenInvalidClaims
	}

	caller := models.Caller{}
	switch id := claims["user_id"].(type) {
	case float64:
		caller.UserID = int64(id)
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return models.Caller{}, jwt.ErrTokenInvalidClaims
		}
		caller.UserID = n
	default:
		return models.Caller{}, jwt.ErrTokenInvalidClaims
	}

	role, _ := claims["role"].(string)
	caller.Role = role
	return caller, nil
}

func writeAuthError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
