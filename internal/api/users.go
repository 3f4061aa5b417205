// ABOUTME: Registration, login, and profile handlers
// ABOUTME: Login never reveals whether the email or the password was wrong

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/store"
)

type registerRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	City       string `json:"city"`
	Region     string `json:"region"`
	Expertise  string `json:"expertise"`
	WorkRegion string `json:"work_region"`
	Role       string `json:"role"`
}

type userResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	Expertise  string `json:"expertise,omitempty"`
	WorkRegion string `json:"work_region,omitempty"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Username:   u.Username,
		City:       u.City,
		Region:     u.Region,
		Expertise:  u.Expertise,
		WorkRegion: u.WorkRegion,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)

	if req.FullName == "" || req.Email == "" || req.Username == "" {
		sendJSONError(w, http.StatusBadRequest, "full_name, email, and username are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		sendJSONError(w, http.StatusBadRequest, "email is not valid")
		return
	}
	if len(req.Password) < 8 {
		sendJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	// bcrypt truncates nothing: input past 72 bytes is an error, so it is
	// rejected here as client input rather than surfacing as a 500.
	if len(req.Password) > 72 {
		sendJSONError(w, http.StatusBadRequest, "password must be at most 72 bytes")
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "unknown role")
		return
	}
	// Admin accounts are created by the bootstrap command, never through
	// public registration.
	if role == auth.RoleAdmin {
		sendJSONError(w, http.StatusBadRequest, "cannot register as admin")
		return
	}
	if role == auth.RoleAdvisor && req.Expertise == "" {
		sendJSONError(w, http.StatusBadRequest, "advisors must declare an expertise")
		return
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &store.User{
		ID:           uuid.New().String(),
		FullName:     req.FullName,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: digest,
		City:         req.City,
		Region:       req.Region,
		Expertise:    req.Expertise,
		WorkRegion:   req.WorkRegion,
		Role:         string(role),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		sendDomainError(w, err)
		return
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	sendJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// handleLogin handles POST /api/auth/login. Unknown emails and wrong
// passwords produce the same response, and both paths run a bcrypt
// comparison so response timing does not leak which one it was.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		sendJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		s.hasher.VerifyDummy(req.Password)
		sendDomainError(w, auth.ErrInvalidCredentials)
		return
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		sendDomainError(w, auth.ErrInvalidCredentials)
		return
	}

	token, err := s.issuer.Issue(user.ID, auth.Role(user.Role))
	if err != nil {
		s.logger.Error("issuing token", "error", err, "user_id", user.ID)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	sendJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.issuer.TTL()).Format(time.RFC3339),
	})
}

// handleProfile handles GET /api/user/profile for the authenticated caller.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())

	user, err := s.store.GetUser(r.Context(), id.SubjectID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, toUserResponse(user))
}

// handleAdminListUsers handles GET /api/admin/users.
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		sendDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	sendJSON(w, http.StatusOK, map[string]any{"users": out, "count": len(out)})
}
