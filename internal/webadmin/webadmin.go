// ABOUTME: Admin dashboard routes and cookie-based admin authentication
// ABOUTME: Logins reuse the token issuer; every /admin route requires the admin role

package webadmin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/allnik/advisory/internal/auth"
	"github.com/allnik/advisory/internal/store"
)

// SessionCookieName is the name of the admin session cookie.
const SessionCookieName = "advisory_admin_session"

// Admin handles dashboard routes and authentication.
type Admin struct {
	store  store.Store
	issuer *auth.TokenIssuer
	hasher *auth.PasswordHasher
	logger *slog.Logger
}

// New creates an Admin dashboard handler.
func New(st store.Store, issuer *auth.TokenIssuer, hasher *auth.PasswordHasher) *Admin {
	return &Admin{
		store:  st,
		issuer: issuer,
		hasher: hasher,
		logger: slog.Default().With("component", "webadmin"),
	}
}

// RegisterRoutes registers the dashboard routes on mux.
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/login", a.handleLoginPage)
	mux.HandleFunc("POST /admin/login", a.handleLogin)
	mux.HandleFunc("POST /admin/logout", a.handleLogout)

	mux.Handle("GET /admin", a.requireAdmin(a.handleDashboard))
	mux.Handle("GET /admin/users", a.requireAdmin(a.handleUsers))
	mux.Handle("POST /admin/users/{id}/promote", a.requireAdmin(a.handlePromoteUser))
	mux.Handle("GET /admin/requests", a.requireAdmin(a.handleRequests))
	mux.Handle("GET /admin/requests/{id}", a.requireAdmin(a.handleRequestDetail))
	mux.Handle("GET /admin/properties", a.requireAdmin(a.handleProperties))
}

// requireAdmin verifies the session cookie and checks for the admin role.
// Anything else redirects to the login page.
func (a *Admin) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		claims, err := a.issuer.Verify(cookie.Value)
		if err != nil || claims.Role != auth.RoleAdmin {
			a.clearSession(w)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		ctx := auth.WithIdentity(r.Context(), &auth.Identity{
			SubjectID: claims.SubjectID,
			Role:      claims.Role,
		})
		next(w, r.WithContext(ctx))
	})
}

func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	a.renderLogin(w, "")
}

// handleLogin verifies admin credentials and sets the session cookie.
// Failures all render the same message so the form does not reveal
// whether the email, the password, or the role was the problem.
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderLogin(w, "invalid form submission")
		return
	}
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		a.hasher.VerifyDummy(password)
		a.renderLogin(w, "invalid credentials")
		return
	}
	if !a.hasher.Verify(password, user.PasswordHash) || user.Role != string(auth.RoleAdmin) {
		a.renderLogin(w, "invalid credentials")
		return
	}

	token, err := a.issuer.Issue(user.ID, auth.RoleAdmin)
	if err != nil {
		a.logger.Error("issuing admin session token", "error", err)
		a.renderLogin(w, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/admin",
		Expires:  time.Now().Add(a.issuer.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	a.logger.Info("admin logged in", "user_id", user.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.clearSession(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (a *Admin) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	requests, err := a.store.ListRequests(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	properties, err := a.store.ListProperties(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pending := 0
	for _, req := range requests {
		if req.Status == store.StatusPending {
			pending++
		}
	}
	a.renderDashboard(w, dashboardData{
		Title:          "Dashboard",
		UserCount:      len(users),
		RequestCount:   len(requests),
		PendingCount:   pending,
		PropertyCount:  len(properties),
		RecentRequests: recent(requests, 5),
	})
}

// recent returns at most n requests. Stores return newest first.
func recent(reqs []*store.Request, n int) []*store.Request {
	if len(reqs) <= n {
		return reqs
	}
	return reqs[:n]
}

func (a *Admin) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.renderUsers(w, users)
}

// handlePromoteUser elevates a user to the advisor role. Admin promotion
// stays on the bootstrap command.
func (a *Admin) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.UpdateUserRole(r.Context(), id, string(auth.RoleAdvisor)); err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	a.logger.Info("user promoted to advisor", "user_id", id)
	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

func (a *Admin) handleRequests(w http.ResponseWriter, r *http.Request) {
	var (
		reqs []*store.Request
		err  error
	)
	if raw := r.URL.Query().Get("status"); raw != "" && store.ValidStatus(store.RequestStatus(raw)) {
		reqs, err = a.store.ListRequestsByStatus(r.Context(), store.RequestStatus(raw))
	} else {
		reqs, err = a.store.ListRequests(r.Context())
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.renderRequests(w, reqs)
}

func (a *Admin) handleRequestDetail(w http.ResponseWriter, r *http.Request) {
	req, err := a.store.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}

	owner, err := a.store.GetUser(r.Context(), req.OwnerID)
	if err != nil {
		owner = &store.User{FullName: "(deleted)"}
	}
	var advisor *store.User
	if req.AdvisorID != "" {
		advisor, _ = a.store.GetUser(r.Context(), req.AdvisorID)
	}
	a.renderRequestDetail(w, req, owner, advisor)
}

func (a *Admin) handleProperties(w http.ResponseWriter, r *http.Request) {
	props, err := a.store.ListProperties(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.renderProperties(w, props)
}
