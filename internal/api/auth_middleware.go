/**
 * @description
 * This file contains the access gate middleware. Every protected request
 * passes through it: the middleware extracts the identity token, verifies it,
 * and injects the resolved subject id into the request context. It proves
 * authenticity of the claim only; whether the subject still exists is checked
 * by the business operation, not here.
 */

package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/imagify/credits-service/internal/token"
)

type contextKey string

const subjectIDContextKey contextKey = "subjectID"

// TokenHeader is the dedicated token header. It takes precedence over the
// Authorization header when both are present.
const TokenHeader = "token"

// AuthMiddleware validates identity tokens and injects the subject id into
// the request context. Requests without a valid token never reach the next
// handler.
func AuthMiddleware(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				respondWithError(w, http.StatusUnauthorized, "Not authorized: token missing")
				return
			}

			subjectID, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, token.ErrExpiredToken) {
					log.Printf("level=info component=access_gate msg=\"rejected expired token\"")
				}
				respondWithError(w, http.StatusUnauthorized, "Token expired or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), subjectIDContextKey, subjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the token from the dedicated header, falling back to a
// bearer-style Authorization header.
func extractToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// SubjectFromContext retrieves the authenticated subject id from the request
// context. Handlers should use this to identify the caller.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subjectID, ok := ctx.Value(subjectIDContextKey).(string)
	return subjectID, ok
}
