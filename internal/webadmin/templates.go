// ABOUTME: Template rendering functions for the admin dashboard
// ABOUTME: Loads templates from the embedded filesystem; descriptions render via goldmark

package webadmin

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/allnik/advisory/internal/store"
)

type loginData struct {
	Title string
	Error string
}

type dashboardData struct {
	Title          string
	UserCount      int
	RequestCount   int
	PendingCount   int
	PropertyCount  int
	RecentRequests []*store.Request
}

type usersData struct {
	Title string
	Users []*store.User
}

type requestsData struct {
	Title    string
	Requests []*store.Request
}

type requestDetailData struct {
	Title       string
	Request     *store.Request
	Owner       *store.User
	Advisor     *store.User
	Description template.HTML
}

type propertiesData struct {
	Title      string
	Properties []*store.Property
}

func (a *Admin) render(w http.ResponseWriter, page string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		a.logger.Error("rendering page", "page", page, "error", err)
	}
}

func (a *Admin) renderLogin(w http.ResponseWriter, errorMsg string) {
	a.render(w, "login.html", loginData{Title: "Login", Error: errorMsg})
}

func (a *Admin) renderDashboard(w http.ResponseWriter, data dashboardData) {
	a.render(w, "dashboard.html", data)
}

func (a *Admin) renderUsers(w http.ResponseWriter, users []*store.User) {
	a.render(w, "users.html", usersData{Title: "Users", Users: users})
}

func (a *Admin) renderRequests(w http.ResponseWriter, reqs []*store.Request) {
	a.render(w, "requests.html", requestsData{Title: "Requests", Requests: reqs})
}

func (a *Admin) renderRequestDetail(w http.ResponseWriter, req *store.Request, owner, advisor *store.User) {
	a.render(w, "request_detail.html", requestDetailData{
		Title:       "Request " + req.ID,
		Request:     req,
		Owner:       owner,
		Advisor:     advisor,
		Description: a.renderMarkdown(req.Description),
	})
}

func (a *Admin) renderProperties(w http.ResponseWriter, props []*store.Property) {
	a.render(w, "properties.html", propertiesData{Title: "Properties", Properties: props})
}

// renderMarkdown converts a markdown description to HTML. Goldmark escapes
// raw HTML by default, so user-authored descriptions cannot inject markup.
func (a *Admin) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		a.logger.Error("converting markdown", "error", err)
		return template.HTML("<p>(unrenderable description)</p>")
	}
	return template.HTML(buf.String())
}
