// ABOUTME: Role enumeration and the pure authorization policy over (role, action)
// ABOUTME: Evaluated strictly after authentication; failures are ErrForbidden

package auth

import "fmt"

// Role is an enumerated access tier attached to a credential and
// propagated into issued tokens.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdvisor Role = "advisor"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assigned when registration does not specify a role.
const DefaultRole = RoleUser

// ParseRole validates a role string. An empty string yields DefaultRole;
// anything outside the enumeration yields ErrUnknownRole.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdvisor, RoleAdmin:
		return Role(s), nil
	case "":
		return DefaultRole, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Action names an operation a caller may attempt.
type Action string

const (
	ActionCreateRequest   Action = "request:create"
	ActionReadRequest     Action = "request:read"
	ActionAcceptRequest   Action = "request:accept"
	ActionCompleteRequest Action = "request:complete"
	ActionCancelRequest   Action = "request:cancel"
	ActionListAllRequests Action = "request:list-all"
	ActionListUsers       Action = "user:list"
	ActionCreateProperty  Action = "property:create"
)

// Policy decides whether a role may perform an action. It is a pure
// function of its configuration and inputs; ownership checks are handled
// separately by CanAccessRequest.
type Policy struct {
	// OwnerCancel permits a request's owner to cancel it while pending.
	// When false every status transition requires the advisor role (or
	// admin for cancellation).
	OwnerCancel bool
}

// DefaultPolicy matches the documented deployment default.
func DefaultPolicy() Policy {
	return Policy{OwnerCancel: true}
}

// Authorize reports whether the identity's role permits the action.
// Ownership-scoped actions (read, cancel) still require the caller to
// pass CanAccessRequest for the specific resource.
func (p Policy) Authorize(id *Identity, action Action) bool {
	if id == nil {
		return false
	}
	switch action {
	case ActionCreateRequest, ActionReadRequest:
		return true
	case ActionAcceptRequest, ActionCompleteRequest:
		// Accepting work is an advisor duty; admins administer, they do
		// not take on client requests.
		return id.Role == RoleAdvisor
	case ActionCancelRequest:
		if id.Role == RoleAdvisor || id.Role == RoleAdmin {
			return true
		}
		return p.OwnerCancel
	case ActionListAllRequests, ActionListUsers:
		return id.Role == RoleAdmin
	case ActionCreateProperty:
		return id.Role == RoleAdvisor || id.Role == RoleAdmin
	default:
		return false
	}
}

// CanAccessRequest reports whether the identity may read or mutate a
// request owned by ownerID and assigned to advisorID (empty when
// unassigned). Owners see their own requests, advisors see requests
// assigned to them, admins see everything.
func (p Policy) CanAccessRequest(id *Identity, ownerID, advisorID string) bool {
	if id == nil {
		return false
	}
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleAdvisor:
		return advisorID == id.SubjectID || ownerID == id.SubjectID
	default:
		return ownerID == id.SubjectID
	}
}
