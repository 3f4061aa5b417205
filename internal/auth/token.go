// ABOUTME: JWT token issuance and verification for API requests
// ABOUTME: Uses HS256 signing with a configurable secret and TTL

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum length in bytes for the signing secret.
// Shorter secrets make HS256 tokens forgeable by brute force.
const MinSecretLength = 32

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = time.Hour

// Claims is the verified payload of a token.
type Claims struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire shape of the JWT payload.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies signed tokens. The secret and TTL are
// fixed at construction and never change for the process lifetime.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithClock overrides the issuer's time source. Used by tests to verify
// expiry behavior without sleeping.
func WithClock(now func() time.Time) TokenIssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// NewTokenIssuer creates a TokenIssuer with the given secret and TTL.
// Returns ErrSecretTooShort if the secret is shorter than MinSecretLength.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration, opts ...TokenIssuerOption) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrSecretTooShort, MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	i := &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue produces a signed token for the given subject and role, expiring
// TTL from now.
func (i *TokenIssuer) Issue(subjectID string, role Role) (string, error) {
	now := i.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks tokenString and returns its claims. Rejections are staged:
// an empty token fails with ErrMissingToken before any cryptographic work,
// an undecodable token with ErrMalformedToken, a signature mismatch with
// ErrInvalidSignature, and a stale token with ErrExpiredToken. The HMAC
// comparison underneath is constant-time.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	// Issued tokens always carry an explicit role; the empty-string
	// default in ParseRole is a registration affordance only.
	if claims.Role == "" {
		return nil, fmt.Errorf("%w: missing role claim", ErrMalformedToken)
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: role claim", ErrMalformedToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrMalformedToken)
	}

	out := &Claims{
		SubjectID: claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
