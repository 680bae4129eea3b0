package middleware

import (
	"context"
	"net/http"
	"strings"

	"shop-api/internal/auth"
	"shop-api/pkg/apierror"
)

type tokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth rejects requests without an Authorization header with 401 and
// requests whose bearer token fails verification with 403. Verified claims
// are available to the next handler through ClaimsFromContext.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			writeAPIError(w, apierror.Unauthorized())
			return
		}

		claims, err := m.validator.Validate(bearerToken(header))
		if err != nil {
			writeAPIError(w, apierror.Forbidden())
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// bearerToken returns the second whitespace-separated field of the header,
// or "" when there is none.
func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
