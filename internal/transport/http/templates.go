package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"crpdash/internal/config"
	"crpdash/internal/services"
	"crpdash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the embedded HTML pages
type Pages struct {
	login     *template.Template
	dashboard *template.Template
}

var templateFuncs = template.FuncMap{
	// pct scales a count against the largest count of its table
	"pct": func(count, max int) int {
		if max <= 0 {
			return 0
		}
		return count * 100 / max
	},
}

// NewPages parses the embedded templates
func NewPages() (*Pages, error) {
	parse := func(page string) (*template.Template, error) {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		return t, nil
	}

	login, err := parse("login.html")
	if err != nil {
		return nil, err
	}
	dashboard, err := parse("dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Pages{login: login, dashboard: dashboard}, nil
}

// LoginPage is the data of the login form
type LoginPage struct {
	Title    string
	AppName  string
	Error    string
	Username string
	Next     string
}

// DashboardPage is the data of the dashboard
type DashboardPage struct {
	Title      string
	AppName    string
	User       string
	Selection  domain.Selection
	Options    domain.FilterOptions
	Summary    domain.Summary
	Dataset    services.DatasetStatus
	ChartURL   string
	ExportURL  string
	ShowRaw    bool
	RawHeaders []string
	RawRows    [][]string
}

// RenderLogin writes the login page with the given status
func (p *Pages) RenderLogin(w http.ResponseWriter, status int, page LoginPage) error {
	page.AppName = config.AppName
	if page.Title == "" {
		page.Title = "Login - " + config.AppName
	}
	return writePage(w, status, p.login, "login.html", page)
}

// RenderDashboard writes the dashboard page
func (p *Pages) RenderDashboard(w http.ResponseWriter, page DashboardPage) error {
	page.AppName = config.AppName
	if page.Title == "" {
		page.Title = config.AppName
	}
	return writePage(w, http.StatusOK, p.dashboard, "dashboard.html", page)
}

// writePage buffers the whole page; nothing is written when execution fails
func writePage(w http.ResponseWriter, status int, t *template.Template, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
