package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/handler"
	"github.com/pa-assistant/backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the account lifecycle endpoints. The public group under
// /v1/auth carries the rate limiter (these endpoints send email and are the
// usual target of enumeration probing); the session-bound endpoints live
// under /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/activate", a.Activate)
	g.POST("/resend-activation", a.ResendActivation)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/password-reset", a.PasswordResetRequest)
	g.POST("/password-reset-confirm", a.PasswordResetConfirm)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/profile", a.Profile)

	// /v1/me answers 401 {is_authenticated:false} for anonymous callers, so
	// it takes the lenient middleware and handles the missing session itself.
	e.GET("/v1/me", a.Me, middleware.OptionalJWTAuth(jwtSecret))
}

// RegisterResources wires the owner-scoped CRUD endpoints. Everything here
// requires a valid access token.
func RegisterResources(e *echo.Echo, jwtSecret string, t *handler.TaskHandler, ct *handler.ContactHandler, ap *handler.AppointmentHandler) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.GET("/tasks", t.List)
	g.POST("/tasks", t.Create)
	g.GET("/tasks/:id", t.Get)
	g.PUT("/tasks/:id", t.Update)
	g.DELETE("/tasks/:id", t.Delete)

	g.GET("/contacts", ct.List)
	g.POST("/contacts", ct.Create)
	g.GET("/contacts/:id", ct.Get)
	g.PUT("/contacts/:id", ct.Update)
	g.DELETE("/contacts/:id", ct.Delete)

	g.GET("/appointments", ap.List)
	g.POST("/appointments", ap.Create)
	g.GET("/appointments/:id", ap.Get)
	g.PUT("/appointments/:id", ap.Update)
	g.DELETE("/appointments/:id", ap.Delete)
}
