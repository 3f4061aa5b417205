// ABOUTME: Property listing handlers
// ABOUTME: Creation is gated to advisors and admins; listing is public

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/store"
)

type createPropertyRequest struct {
	Type              string `json:"type"`
	Area              int    `json:"area"`
	Location          string `json:"location"`
	Price             int    `json:"price"`
	PaymentConditions string `json:"payment_conditions"`
	CustomerType      string `json:"customer_type"`
	Description       string `json:"description"`
}

type propertyResponse struct {
	ID                string `json:"id"`
	OwnerID           string `json:"owner_id"`
	Type              string `json:"type"`
	Area              int    `json:"area"`
	Location          string `json:"location"`
	Price             int    `json:"price"`
	PaymentConditions string `json:"payment_conditions,omitempty"`
	CustomerType      string `json:"customer_type,omitempty"`
	Description       string `json:"description,omitempty"`
	CreatedAt         string `json:"created_at"`
}

func toPropertyResponse(p *store.Property) propertyResponse {
	return propertyResponse{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		Type:              p.Type,
		Area:              p.Area,
		Location:          p.Location,
		Price:             p.Price,
		PaymentConditions: p.PaymentConditions,
		CustomerType:      p.CustomerType,
		Description:       p.Description,
		CreatedAt:         p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleCreateProperty handles POST /api/properties.
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Type == "" || req.Location == "" {
		sendJSONError(w, http.StatusBadRequest, "type and location are required")
		return
	}
	if req.Area < 0 || req.Price < 0 {
		sendJSONError(w, http.StatusBadRequest, "area and price must not be negative")
		return
	}

	prop := &store.Property{
		ID:                uuid.New().String(),
		OwnerID:           id.SubjectID,
		Type:              req.Type,
		Area:              req.Area,
		Location:          req.Location,
		Price:             req.Price,
		PaymentConditions: req.PaymentConditions,
		CustomerType:      req.CustomerType,
		Description:       req.Description,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.store.CreateProperty(r.Context(), prop); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("property created", "property_id", prop.ID, "owner_id", prop.OwnerID)
	sendJSON(w, http.StatusCreated, toPropertyResponse(prop))
}

// handleListProperties handles GET /api/properties. Listings are public.
func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.store.ListProperties(r.Context())
	if err != nil {
		sendDomainError(w, err)
		return
	}

	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	sendJSON(w, http.StatusOK, map[string]any{"properties": out, "count": len(out)})
}
