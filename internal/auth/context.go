// ABOUTME: Identity type and context helpers for propagating auth info
// ABOUTME: Populated by the HTTP middleware, read by protected handlers

package auth

import "context"

// Identity is the authenticated caller resolved from a verified token.
type Identity struct {
	SubjectID string
	Role      Role
}

// identityKey is the context key type for Identity values.
type identityKey struct{}

// WithIdentity returns a new context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the Identity from ctx, or nil if the
// request did not pass through the auth middleware.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// MustIdentityFromContext retrieves the Identity from ctx, panicking if
// absent. Only for handlers that are always registered behind the gate.
func MustIdentityFromContext(ctx context.Context) *Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
