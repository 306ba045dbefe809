package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the claims we store in the request context.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth is a middleware that enforces authentication on protected
// routes. It reads the session JWT, validates it, and stores the claims in
// the request context. If the token is missing or invalid it returns 401
// and stops the chain.
//
// TOKEN SOURCES:
// Browsers carry the session in the "token" HttpOnly cookie (set on login;
// HttpOnly keeps it away from XSS). API clients — the portfolio CLI — send
// "Authorization: Bearer <token>" instead. The header wins when both are
// present.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated","message":"You must be signed in"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity if a valid token is present but does
// NOT block the request otherwise. Used on public reads (GET /api/comments)
// where anonymous visitors are fine.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := extractClaims(r, tokens); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext retrieves the authenticated session claims from the
// request context. Returns (nil, false) for anonymous requests.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractClaims reads the bearer header or the token cookie and validates
// whichever it finds.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		tokenStr, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return nil, errors.New("auth: malformed Authorization header")
		}
		return tokens.Validate(tokenStr)
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie — not an error as such, just anonymous
		return nil, err
	}

	return tokens.Validate(cookie.Value)
}
