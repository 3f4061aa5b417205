// ABOUTME: Advisory request lifecycle handlers: create, read, accept, complete, cancel
// ABOUTME: Ownership checks run after the role gate; status transitions are validated here

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/store"
)

type createRequestRequest struct {
	Type        string `json:"type"`
	Area        int    `json:"area"`
	Location    string `json:"location"`
	Bedrooms    int    `json:"bedrooms"`
	Style       string `json:"style"`
	Budget      int    `json:"budget"`
	Payment     string `json:"payment"`
	Description string `json:"description"`
}

type requestResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	AdvisorID   string `json:"advisor_id,omitempty"`
	Type        string `json:"type"`
	Area        int    `json:"area"`
	Location    string `json:"location"`
	Bedrooms    int    `json:"bedrooms,omitempty"`
	Style       string `json:"style,omitempty"`
	Budget      int    `json:"budget"`
	Payment     string `json:"payment,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toRequestResponse(req *store.Request) requestResponse {
	return requestResponse{
		ID:          req.ID,
		OwnerID:     req.OwnerID,
		AdvisorID:   req.AdvisorID,
		Type:        req.Type,
		Area:        req.Area,
		Location:    req.Location,
		Bedrooms:    req.Bedrooms,
		Style:       req.Style,
		Budget:      req.Budget,
		Payment:     req.Payment,
		Description: req.Description,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   req.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toRequestResponses(reqs []*store.Request) []requestResponse {
	out := make([]requestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestResponse(r))
	}
	return out
}

// handleCreateRequest handles POST /api/requests.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	var req createRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" || req.Location == "" {
		sendJSONError(w, http.StatusBadRequest, "type and location are required")
		return
	}
	if req.Area < 0 || req.Budget < 0 || req.Bedrooms < 0 {
		sendJSONError(w, http.StatusBadRequest, "area, budget, and bedrooms must not be negative")
		return
	}

	now := time.Now().UTC()
	rec := &store.Request{
		ID:          uuid.New().String(),
		OwnerID:     id.SubjectID,
		Type:        req.Type,
		Area:        req.Area,
		Location:    req.Location,
		Bedrooms:    req.Bedrooms,
		Style:       req.Style,
		Budget:      req.Budget,
		Payment:     req.Payment,
		Description: req.Description,
		Status:      store.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateRequest(r.Context(), rec); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("request created", "request_id", rec.ID, "owner_id", rec.OwnerID)
	sendJSON(w, http.StatusCreated, toRequestResponse(rec))
}

// handleListRequests handles GET /api/requests. The result is scoped to the
// caller: owners see their own requests, advisors see requests assigned to
// them plus the pending pool.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	switch id.Role {
	case auth.RoleAdvisor:
		assigned, err := s.store.ListRequestsByAdvisor(r.Context(), id.SubjectID)
		if err != nil {
			sendDomainError(w, err)
			return
		}
		pending, err := s.store.ListRequestsByStatus(r.Context(), store.StatusPending)
		if err != nil {
			sendDomainError(w, err)
			return
		}
		out := toRequestResponses(assigned)
		out = append(out, toRequestResponses(pending)...)
		sendJSON(w, http.StatusOK, map[string]any{"requests": out, "count": len(out)})
	default:
		reqs, err := s.store.ListRequestsByOwner(r.Context(), id.SubjectID)
		if err != nil {
			sendDomainError(w, err)
			return
		}
		out := toRequestResponses(reqs)
		sendJSON(w, http.StatusOK, map[string]any{"requests": out, "count": len(out)})
	}
}

// handleGetRequest handles GET /api/requests/{id}. Advisors may also read
// unassigned pending requests so they can decide whether to accept them.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	req, err := s.store.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	allowed := s.policy.CanAccessRequest(id, req.OwnerID, req.AdvisorID) ||
		(id.Role == auth.RoleAdvisor && req.Status == store.StatusPending)
	if !allowed {
		sendDomainError(w, auth.ErrForbidden)
		return
	}
	sendJSON(w, http.StatusOK, toRequestResponse(req))
}

// handleAcceptRequest handles POST /api/requests/{id}/accept. The role gate
// has already restricted this to advisors.
func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	req, err := s.store.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if req.Status != store.StatusPending {
		sendJSONError(w, http.StatusBadRequest, "only pending requests can be accepted")
		return
	}
	if req.OwnerID == id.SubjectID {
		sendJSONError(w, http.StatusBadRequest, "cannot accept your own request")
		return
	}

	req.Status = store.StatusAccepted
	req.AdvisorID = id.SubjectID
	req.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRequest(r.Context(), req); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("request accepted", "request_id", req.ID, "advisor_id", id.SubjectID)
	sendJSON(w, http.StatusOK, toRequestResponse(req))
}

// handleCompleteRequest handles POST /api/requests/{id}/complete. Only the
// advisor assigned to the request may complete it.
func (s *Server) handleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	req, err := s.store.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if req.AdvisorID != id.SubjectID {
		sendDomainError(w, auth.ErrForbidden)
		return
	}
	if req.Status != store.StatusAccepted {
		sendJSONError(w, http.StatusBadRequest, "only accepted requests can be completed")
		return
	}

	req.Status = store.StatusCompleted
	req.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRequest(r.Context(), req); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("request completed", "request_id", req.ID, "advisor_id", id.SubjectID)
	sendJSON(w, http.StatusOK, toRequestResponse(req))
}

// handleCancelRequest handles POST /api/requests/{id}/cancel. Owners may
// cancel their own pending requests when the owner_cancel knob is on;
// assigned advisors and admins may cancel anything not yet completed.
func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	req, err := s.store.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	switch id.Role {
	case auth.RoleAdmin:
	case auth.RoleAdvisor:
		if req.AdvisorID != id.SubjectID {
			sendDomainError(w, auth.ErrForbidden)
			return
		}
	default:
		if req.OwnerID != id.SubjectID {
			sendDomainError(w, auth.ErrForbidden)
			return
		}
		if req.Status != store.StatusPending {
			sendJSONError(w, http.StatusBadRequest, "only pending requests can be cancelled by their owner")
			return
		}
	}

	if req.Status == store.StatusCompleted || req.Status == store.StatusCancelled {
		sendJSONError(w, http.StatusBadRequest, "request is already finished")
		return
	}

	req.Status = store.StatusCancelled
	req.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRequest(r.Context(), req); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("request cancelled", "request_id", req.ID, "by", id.SubjectID)
	sendJSON(w, http.StatusOK, toRequestResponse(req))
}

// handleAdminListRequests handles GET /api/admin/requests with an optional
// ?status= filter.
func (s *Server) handleAdminListRequests(w http.ResponseWriter, r *http.Request) {
	var (
		reqs []*store.Request
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := store.RequestStatus(raw)
		if !store.ValidStatus(status) {
			sendJSONError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		reqs, err = s.store.ListRequestsByStatus(r.Context(), status)
	} else {
		reqs, err = s.store.ListRequests(r.Context())
	}
	if err != nil {
		sendDomainError(w, err)
		return
	}

	out := toRequestResponses(reqs)
	sendJSON(w, http.StatusOK, map[string]any{"requests": out, "count": len(out)})
}
