package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/tourism-portal/internal/handler"    // HTTP handlers
	"github.com/iliyamo/tourism-portal/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/tourism-portal/internal/model"      // role names
)

// Role sets allowed on the staff surfaces.
var (
	listingEditors = []string{model.RoleAdmin, model.RoleTourismOfficer, model.RoleLGUOfficer}
	dashboardUsers = []string{model.RoleAdmin, model.RoleTourismOfficer, model.RoleLGUOfficer, model.RoleTourismStaff}
)

// RegisterRoutes registers the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the authentication routes.  Register, login and
// refresh live under /v1/auth and pass through limiter, a stricter per-IP
// bucket than the global one.  Login also passes through accountLimiter,
// keyed by the identifier being tried.  Logout is reachable both with a refresh token
// (/v1/auth/logout) and with an access token (/v1/logout).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter, accountLimiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter, accountLimiter)
	g.POST("/refresh", a.Refresh, limiter)
	g.POST("/logout", a.Logout)

	protected := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	protected.GET("/me", a.Me)
	protected.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated portal under /v1/portal.
// GET responses go through cache.
func RegisterPublic(e *echo.Echo, p *handler.PortalHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/portal")
	g.GET("/attractions", p.ListAttractions, cache)
	g.GET("/activities", p.ListActivities, cache)
	g.GET("/activities/:id", p.GetActivity, cache)
	g.GET("/accommodations", p.ListAccommodations, cache)
	g.GET("/operators", p.ListOperators, cache)
	g.POST("/contact", p.SubmitContact)
}

// RegisterAdmin registers listing administration (Admin, Tourism Officer,
// LGU Officer) and account administration (Admin only) under /v1/admin.
func RegisterAdmin(e *echo.Echo, l *handler.AdminListingHandler, u *handler.AdminUserHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret))

	editors := g.Group("", middleware.RequireRole(listingEditors...))

	// ---- Attractions ----
	editors.GET("/attractions", l.Attractions.List)
	editors.GET("/attractions/:id", l.Attractions.Get)
	editors.POST("/attractions", l.Attractions.Create)
	editors.PUT("/attractions/:id", l.Attractions.Update)
	editors.DELETE("/attractions/:id", l.Attractions.Delete)

	// ---- Activities ----
	editors.GET("/activities", l.Activities.List)
	editors.GET("/activities/:id", l.Activities.Get)
	editors.POST("/activities", l.Activities.Create)
	editors.PUT("/activities/:id", l.Activities.Update)
	editors.DELETE("/activities/:id", l.Activities.Delete)

	// ---- Accommodations ----
	editors.GET("/accommodations", l.Accommodations.List)
	editors.GET("/accommodations/:id", l.Accommodations.Get)
	editors.POST("/accommodations", l.Accommodations.Create)
	editors.PUT("/accommodations/:id", l.Accommodations.Update)
	editors.DELETE("/accommodations/:id", l.Accommodations.Delete)

	// ---- Accounts ----
	admins := g.Group("", middleware.RequireRole(model.RoleAdmin))
	admins.GET("/users", u.ListUsers)
	admins.PATCH("/users/:id/status", u.SetStatus)
	admins.GET("/account-statuses", u.ListAccountStatuses)
	admins.GET("/contact-messages", u.ListContactMessages)
}

// RegisterDashboard registers staff dashboard figures.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, jwtSecret string) {
	g := e.Group("/v1/dashboard", middleware.JWTAuth(jwtSecret), middleware.RequireRole(dashboardUsers...))
	g.GET("/stats", d.Stats)
}
