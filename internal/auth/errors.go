// ABOUTME: Sentinel errors for authentication and authorization failures
// ABOUTME: Callers use errors.Is to map these to HTTP status codes

package auth

import "errors"

// Authentication errors. All of these map to a 401-equivalent outcome.
var (
	// ErrMissingToken means no token was present in the request.
	ErrMissingToken = errors.New("auth: missing token")

	// ErrMalformedToken means the token could not be decoded at all.
	ErrMalformedToken = errors.New("auth: malformed token")

	// ErrInvalidSignature means the token decoded but its signature does
	// not match the signing secret.
	ErrInvalidSignature = errors.New("auth: invalid token signature")

	// ErrExpiredToken means the token signature is valid but the token
	// is past its expiry.
	ErrExpiredToken = errors.New("auth: token expired")

	// ErrInvalidCredentials means an email/password pair did not match
	// a stored credential.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Authorization errors. These map to a 403-equivalent outcome and are
// only possible after authentication has succeeded.
var (
	// ErrForbidden means the authenticated identity's role or ownership
	// does not permit the requested action.
	ErrForbidden = errors.New("auth: access denied")
)

// Configuration errors surfaced at construction time.
var (
	// ErrSecretTooShort means the signing secret does not meet MinSecretLength.
	ErrSecretTooShort = errors.New("auth: jwt secret too short")

	// ErrUnknownRole means a role string is not one of the enumerated roles.
	ErrUnknownRole = errors.New("auth: unknown role")
)
