// ABOUTME: End-to-end API tests over httptest with a real SQLite store
// ABOUTME: Exercises registration, login, the request lifecycle, and role gates

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/config"
	"github.com/allnik/advisory/internal/store"
)

const testSecret = "test-secret-key-of-sufficient-length!!"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	ts     *httptest.Server
	store  store.Store
	issuer *auth.TokenIssuer
}

func newTestServer(t *testing.T, opts ...auth.TokenIssuerOption) *testServer {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	issuer, err := auth.NewTokenIssuer([]byte(testSecret), time.Hour, opts...)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{HTTPAddr: ":0"},
		Auth: config.AuthConfig{
			JWTSecret:   testSecret,
			TokenHeader: auth.DefaultTokenHeader,
			TokenTTL:    time.Hour,
		},
	}

	srv := New(cfg, st, issuer, auth.NewPasswordHasher(bcrypt.MinCost), testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, store: st, issuer: issuer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// register creates an account and returns a valid token for it.
func (s *testServer) register(t *testing.T, email, role string) (userID, token string) {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"full_name": "Test Person",
		"email":     email,
		"username":  email,
		"password":  "hunter22hunter22",
		"expertise": "residential",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	userID = body["id"].(string)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "hunter22hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token = decodeBody(t, resp)["token"].(string)
	return userID, token
}

// promoteToAdmin flips an account's role directly in the store, then mints
// a fresh token carrying it. Public registration never grants admin.
func (s *testServer) promoteToAdmin(t *testing.T, userID string) string {
	t.Helper()
	require.NoError(t, s.store.UpdateUserRole(t.Context(), userID, string(auth.RoleAdmin)))
	token, err := s.issuer.Issue(userID, auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"full_name": "Dana Client",
		"email":     "Dana@Example.com",
		"username":  "dana",
		"password":  "long-enough-password",
		"city":      "Lisbon",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "dana@example.com", body["email"], "email should be normalized to lowercase")
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "dana@example.com",
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody(t, resp)
	token := login["token"].(string)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, login["expires_at"])

	resp = s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody(t, resp)
	assert.Equal(t, "Dana Client", profile["full_name"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"full_name": "X", "username": "x", "password": "long-password"}},
		{"invalid email", map[string]any{"full_name": "X", "email": "nope", "username": "x", "password": "long-password"}},
		{"short password", map[string]any{"full_name": "X", "email": "x@y.z", "username": "x", "password": "short"}},
		{"password over bcrypt limit", map[string]any{"full_name": "X", "email": "x@y.z", "username": "x", "password": strings.Repeat("p", 100)}},
		{"unknown role", map[string]any{"full_name": "X", "email": "x@y.z", "username": "x", "password": "long-password", "role": "superuser"}},
		{"admin role", map[string]any{"full_name": "X", "email": "x@y.z", "username": "x", "password": "long-password", "role": "admin"}},
		{"advisor without expertise", map[string]any{"full_name": "X", "email": "x@y.z", "username": "x", "password": "long-password", "role": "advisor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "dupe@example.com", "user")

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"full_name": "Second Try",
		"email":     "dupe@example.com",
		"username":  "second",
		"password":  "long-enough-password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "real@example.com", "user")

	for _, tt := range []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "real@example.com", "not-the-password"},
		{"unknown email", "ghost@example.com", "hunter22hunter22"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
				"email":    tt.email,
				"password": tt.pass,
			})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, "invalid credentials", body["error"], "response must not reveal which part was wrong")
		})
	}
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/user/profile", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestExpiredTokenRejected(t *testing.T) {
	now := time.Now()
	s := newTestServer(t, auth.WithClock(func() time.Time { return now }))

	userID, _ := s.register(t, "sleepy@example.com", "user")
	token, err := s.issuer.Issue(userID, auth.RoleUser)
	require.NoError(t, err)

	resp := s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	now = now.Add(2 * time.Hour)
	resp = s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestLifecycle(t *testing.T) {
	s := newTestServer(t)

	_, clientTok := s.register(t, "client@example.com", "user")
	advisorID, advisorTok := s.register(t, "advisor@example.com", "advisor")

	// Client creates a request.
	resp := s.do(t, http.MethodPost, "/api/requests", clientTok, map[string]any{
		"type":     "buy",
		"area":     120,
		"location": "Porto",
		"bedrooms": 3,
		"budget":   350000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	reqID := created["id"].(string)
	assert.Equal(t, "pending", created["status"])

	// Clients cannot accept requests even when they own them.
	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/accept", reqID), clientTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Advisor sees the pending request and accepts it.
	resp = s.do(t, http.MethodGet, "/api/requests/"+reqID, advisorTok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/accept", reqID), advisorTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	accepted := decodeBody(t, resp)
	assert.Equal(t, "accepted", accepted["status"])
	assert.Equal(t, advisorID, accepted["advisor_id"])

	// Double-accept is a validation error, not a conflict with the gate.
	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/accept", reqID), advisorTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Only the assigned advisor may complete.
	_, otherAdvisorTok := s.register(t, "other-advisor@example.com", "advisor")
	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/complete", reqID), otherAdvisorTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/complete", reqID), advisorTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	completed := decodeBody(t, resp)
	assert.Equal(t, "completed", completed["status"])

	// Finished requests cannot be cancelled.
	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/cancel", reqID), advisorTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminDoesNotAcceptRequests(t *testing.T) {
	s := newTestServer(t)

	_, clientTok := s.register(t, "client@example.com", "user")
	adminID, _ := s.register(t, "admin@example.com", "user")
	adminTok := s.promoteToAdmin(t, adminID)

	resp := s.do(t, http.MethodPost, "/api/requests", clientTok, map[string]any{
		"type": "rent", "location": "Faro", "budget": 900,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reqID := decodeBody(t, resp)["id"].(string)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/accept", reqID), adminTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestOwnerCancelPendingRequest(t *testing.T) {
	s := newTestServer(t)

	_, clientTok := s.register(t, "client@example.com", "user")
	_, strangerTok := s.register(t, "stranger@example.com", "user")

	resp := s.do(t, http.MethodPost, "/api/requests", clientTok, map[string]any{
		"type": "buy", "location": "Braga", "budget": 100000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reqID := decodeBody(t, resp)["id"].(string)

	// Another user can neither see nor cancel it.
	resp = s.do(t, http.MethodGet, "/api/requests/"+reqID, strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/cancel", reqID), strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/requests/%s/cancel", reqID), clientTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cancelled := decodeBody(t, resp)
	assert.Equal(t, "cancelled", cancelled["status"])
}

func TestListRequestsScopedByRole(t *testing.T) {
	s := newTestServer(t)

	_, aliceTok := s.register(t, "alice@example.com", "user")
	_, bobTok := s.register(t, "bob@example.com", "user")
	_, advisorTok := s.register(t, "advisor@example.com", "advisor")
	adminID, _ := s.register(t, "root@example.com", "user")
	adminTok := s.promoteToAdmin(t, adminID)

	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/requests", aliceTok, map[string]any{
			"type": "buy", "location": "Porto", "budget": 1000,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	resp := s.do(t, http.MethodPost, "/api/requests", bobTok, map[string]any{
		"type": "rent", "location": "Faro", "budget": 800,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Alice sees only her own two.
	resp = s.do(t, http.MethodGet, "/api/requests", aliceTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeBody(t, resp)["count"])

	// The advisor sees the whole pending pool.
	resp = s.do(t, http.MethodGet, "/api/requests", advisorTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decodeBody(t, resp)["count"])

	// The admin list endpoint returns everything; regular users are shut out.
	resp = s.do(t, http.MethodGet, "/api/admin/requests", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), decodeBody(t, resp)["count"])

	resp = s.do(t, http.MethodGet, "/api/admin/requests", aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/admin/requests?status=bogus", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminListUsers(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "one@example.com", "user")
	adminID, _ := s.register(t, "two@example.com", "user")
	adminTok := s.promoteToAdmin(t, adminID)

	resp := s.do(t, http.MethodGet, "/api/admin/users", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])

	users := body["users"].([]any)
	for _, u := range users {
		assert.NotContains(t, u.(map[string]any), "password_hash")
	}
}

func TestProperties(t *testing.T) {
	s := newTestServer(t)

	_, clientTok := s.register(t, "client@example.com", "user")
	_, advisorTok := s.register(t, "advisor@example.com", "advisor")

	// Only advisors and admins may post listings.
	resp := s.do(t, http.MethodPost, "/api/properties", clientTok, map[string]any{
		"type": "apartment", "location": "Lisbon", "price": 250000,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/properties", advisorTok, map[string]any{
		"type": "apartment", "area": 80, "location": "Lisbon", "price": 250000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Listing is public, no token required.
	resp = s.do(t, http.MethodGet, "/api/properties", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, resp)["count"])
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}
