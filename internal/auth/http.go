// ABOUTME: HTTP middleware gating protected endpoints behind token verification
// ABOUTME: Extracts the token from a configurable header and attaches Identity to context

package auth

import (
	"errors"
	"net/http"
	"strings"
)

// DefaultTokenHeader is the header carrying the token when none is
// configured. Deployments may use a custom header such as x-auth-token.
const DefaultTokenHeader = "Authorization"

// extractToken pulls the raw token out of the configured request header.
// The Authorization header accepts both "Bearer <token>" and a bare token
// (deployed clients have sent both); custom headers are taken verbatim.
func extractToken(r *http.Request, headerName string) string {
	value := strings.TrimSpace(r.Header.Get(headerName))
	if value == "" {
		return ""
	}
	if strings.EqualFold(headerName, DefaultTokenHeader) {
		// Scheme comparison is case-insensitive; clients send "Bearer",
		// "bearer", and everything in between.
		const prefix = "Bearer "
		if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
			return strings.TrimSpace(value[len(prefix):])
		}
	}
	return value
}

// writeAuthError renders a gate failure as a JSON error response. Gate
// failures are client-input problems: 401 for authentication, 403 for
// authorization, never 500.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	msg := "authentication required"
	switch {
	case errors.Is(err, ErrMissingToken):
		msg = "missing token"
	case errors.Is(err, ErrMalformedToken):
		msg = "malformed token"
	case errors.Is(err, ErrInvalidSignature):
		msg = "invalid token"
	case errors.Is(err, ErrExpiredToken):
		msg = "token expired"
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
		msg = "access denied"
	}
	http.Error(w, `{"error":"`+msg+`"}`, status)
}

// Middleware returns an HTTP middleware that verifies the request token
// and attaches the resolved Identity to the request context. Requests
// failing verification are rejected before the wrapped handler runs.
func Middleware(issuer *TokenIssuer, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultTokenHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := issuer.Verify(extractToken(r, headerName))
			if err != nil {
				writeAuthError(w, err)
				return
			}

			id := &Identity{
				SubjectID: claims.SubjectID,
				Role:      claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Require returns a middleware enforcing that the authenticated identity
// may perform action under policy. Must be used after Middleware.
func Require(policy Policy, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				writeAuthError(w, ErrMissingToken)
				return
			}
			if !policy.Authorize(id, action) {
				writeAuthError(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin identities.
// Must be used after Middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				writeAuthError(w, ErrMissingToken)
				return
			}
			if id.Role != RoleAdmin {
				writeAuthError(w, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
