// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/houseshow/houseshow/internal/handler"
    "github.com/houseshow/houseshow/internal/middleware"
    "github.com/houseshow/houseshow/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers and monitoring to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account endpoints.  Register, login and
// refresh live under /v1/auth without a session; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    // Logout accepts either a refresh token in the body or a bearer token,
    // so it stays outside the JWT middleware.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  They sit
// behind the Redis response cache when one is configured.
func RegisterPublic(e *echo.Echo, h *handler.ConcertHandler, cache echo.MiddlewareFunc) {
    g := e.Group("/v1")
    if cache != nil {
        g.Use(cache)
    }
    g.GET("/concerts", h.ListPublic)
    g.GET("/concerts/:id", h.Get)
    g.GET("/concerts/:id/capacity", h.Capacity)
}

// RegisterBookings registers the booking lifecycle endpoints.  Creation and
// cancellation belong to performers and venue operators; responding is the
// venue operator's alone, enforced again inside the workflow.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
    g := e.Group(
        "/v1/bookings",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RolePerformer, model.RoleVenueOperator),
    )
    g.POST("", h.Create)
    g.GET("", h.List)
    g.GET("/:id", h.Get)
    g.POST("/:id/respond", h.Respond)
    g.POST("/:id/cancel", h.Cancel)
}

// RegisterRSVPs registers the guest admission endpoints.  Submission is
// rate limited per guest to keep one account from hammering a popular
// concert.
func RegisterRSVPs(e *echo.Echo, h *handler.RSVPHandler, ch *handler.ConcertHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    guests := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleGuest),
    )
    if limiter != nil {
        guests.POST("/concerts/:id/rsvps", h.Submit, limiter)
    } else {
        guests.POST("/concerts/:id/rsvps", h.Submit)
    }
    guests.GET("/my/rsvps", h.ListMine)
    guests.DELETE("/rsvps/:id", h.Delete)

    hosts := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleVenueOperator),
    )
    hosts.GET("/my/concerts", ch.ListMine)
    hosts.GET("/concerts/:id/rsvps", h.ListForConcert)
    hosts.POST("/rsvps/:id/decide", h.Decide)
}
