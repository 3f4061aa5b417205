// Package api exposes the advisory server's JSON HTTP interface.
//
// Routes are registered on a net/http ServeMux. Protected routes are
// wrapped by the auth middleware (token verification) and, where the role
// policy demands it, a role gate. The package owns the mapping from
// domain errors to HTTP status codes:
//
//	validation failure      -> 400
//	authentication failure  -> 401
//	authorization failure   -> 403
//	missing resource        -> 404
//	duplicate registration  -> 409
//	storage/internal fault  -> 500 (generic message, no internal detail)
package api
