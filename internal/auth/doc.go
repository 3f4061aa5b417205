// Package auth provides authentication and authorization for the advisory server.
//
// # Credentials
//
// Passwords are hashed with bcrypt (salt embedded in the digest) via
// PasswordHasher. Plaintext passwords are never persisted or logged.
//
// # Tokens
//
// Clients authenticate with JWT tokens signed with HS256 using the
// configured jwt_secret. Tokens carry the subject ID and role and expire
// after the configured TTL (1 hour by default). There is no revocation
// list; tokens are stateless and self-expiring.
//
// Verification is staged so callers get a precise rejection reason:
//
//	missing token -> ErrMissingToken (no cryptographic work performed)
//	undecodable   -> ErrMalformedToken
//	bad signature -> ErrInvalidSignature
//	past expiry   -> ErrExpiredToken
//
// # Access Gate
//
// Middleware extracts the token from a configurable header, verifies it,
// and attaches the resolved Identity to the request context. Protected
// handlers retrieve it with IdentityFromContext. Gate failures are always
// 401s, never 500s.
//
// # Role Policy
//
// Roles are user, advisor, and admin. Policy.Authorize is a pure function
// over (role, action); ownership checks are separate via CanAccessRequest.
// Authorization failures (ErrForbidden) are distinct from authentication
// failures and map to 403.
package auth
