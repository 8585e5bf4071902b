// Package middleware implements the pluggable auth hook (C11), adapted from
// the teacher's JWT bearer middleware.
package middleware

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/vikasavnish/marketaggregator/internal/models"
	"github.com/vikasavnish/marketaggregator/internal/utils"
)

// AuthMiddleware enforces a valid HS256 bearer JWT when required is true.
// When required is false it is a no-op passthrough — spec.md's Non-goals
// describe this as a pluggable hook, not a full authorization system.
func AuthMiddleware(jwtSecretKey []byte, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !required {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorizationHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authorizationHeader, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims := &models.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return jwtSecretKey, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUsernameToContext(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
