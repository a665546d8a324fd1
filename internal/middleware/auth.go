package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	OperatorIDKey  contextKey = "operatorID"
	TokenClaimsKey contextKey = "jwtClaims"
)

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}

// RequireOperator rejects requests without a valid bearer token carrying
// the operator role. Operator identity and claims are stored on the
// request context for handlers that need them.
func RequireOperator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if role, _ := claims["role"].(string); role != "operator" {
				writeAuthError(w, http.StatusForbidden, "operator role required")
				return
			}

			ctx := context.WithValue(r.Context(), TokenClaimsKey, claims)
			if sub, ok := claims["sub"].(string); ok {
				ctx = context.WithValue(ctx, OperatorIDKey, sub)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorIDFrom returns the authenticated operator's subject, if any.
func OperatorIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OperatorIDKey).(string)
	return id, ok
}
