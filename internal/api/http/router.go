package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaahan-portal/violation-portal/internal/api/http/handlers"
	"github.com/vaahan-portal/violation-portal/internal/auth"
	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Views   *handlers.ViewsHandler
	Gate    *auth.GateMiddleware
	Metrics *observability.Metrics
}

// View is one entry of the portal route table. A nil Roles with Protected
// set admits any authenticated identity. Source is the portal API path the
// view reads its data from.
type View struct {
	Path      string
	Name      string
	Protected bool
	Roles     []domain.Role
	Source    string
}

// Views is the portal's route table.
var Views = []View{
	{Path: "/", Name: "home"},
	{Path: "/register", Name: "register"},
	{Path: "/verify-otp", Name: "verify-otp"},
	{Path: "/login", Name: "login"},
	{Path: "/forgot-password", Name: "forgot-password"},

	{Path: "/profile", Name: "profile", Protected: true},

	{Path: "/dashboard", Name: "user-dashboard", Protected: true, Roles: []domain.Role{domain.RoleUser}},
	{Path: "/report", Name: "report-violation", Protected: true, Roles: []domain.Role{domain.RoleUser}},
	{Path: "/my-reports", Name: "my-reports", Protected: true, Roles: []domain.Role{domain.RoleUser}, Source: "/reports/my"},

	{Path: "/reviewer", Name: "reviewer-dashboard", Protected: true, Roles: []domain.Role{domain.RoleReviewer}},
	{Path: "/review", Name: "review-reports", Protected: true, Roles: []domain.Role{domain.RoleReviewer}, Source: "/reviewer/reports/pending"},

	{Path: "/admin", Name: "admin-dashboard", Protected: true, Roles: []domain.Role{domain.RoleAdmin}},
	{Path: "/admin/users", Name: "admin-users", Protected: true, Roles: []domain.Role{domain.RoleAdmin}},
	{Path: "/admin/reports", Name: "admin-reports", Protected: true, Roles: []domain.Role{domain.RoleAdmin}, Source: "/admin/reports"},
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	sessionGroup := app.Group("/session")
	sessionGroup.Get("", cfg.Session.Current)
	sessionGroup.Post("/login", cfg.Session.Login)
	sessionGroup.Post("/logout", cfg.Session.Logout)

	for _, view := range Views {
		render := cfg.Views.Render(view.Name, view.Source)
		switch {
		case !view.Protected:
			app.Get(view.Path, render)
		case view.Roles == nil:
			app.Get(view.Path, cfg.Gate.RequireSession(), render)
		default:
			app.Get(view.Path, cfg.Gate.RequireRoles(view.Roles...), render)
		}
	}
}
