package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth is the authorization gate for protected routes.
//
// It extracts the bearer token from the Authorization header, verifies it,
// and attaches the resolved claims to the request context. On any failure
// (missing header, malformed header, invalid or expired token) it terminates
// the request with 401 before the handler runs. Public routes simply are not
// wrapped with this middleware; the route table in internal/server declares
// which is which.
//
// The gate is stateless: all per-request state lives in the token and the
// request context.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity attached by
// RequireAuth. Returns (nil, false) if the request carried no valid token.
func IdentityFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(identityKey).(*Claims)
	return claims, ok && claims != nil
}

// claimsFromRequest reads and verifies the bearer token.
func claimsFromRequest(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, errMissingBearer
	}
	return tokens.Verify(parts[1])
}

var errMissingBearer = errors.New("auth: missing bearer token")

// unauthorized writes the uniform 401 envelope. One generic message for
// every failure mode, so missing, expired, and forged tokens all read the
// same from the outside.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    "invalid or missing bearer token",
		"error":      "Unauthorized",
	})
}
