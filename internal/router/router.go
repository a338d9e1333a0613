package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-api/internal/handler"
	"github.com/cinebook/booking-api/internal/middleware"
)

// Handlers bundles every HTTP handler the routes need.
type Handlers struct {
	Auth     *handler.AuthHandler
	Movies   *handler.MovieHandler
	Sessions *handler.SessionHandler
	Tickets  *handler.TicketHandler
}

// RegisterRoutes wires up the full route table on the provided Echo
// instance.  Browse endpoints (catalog, seat maps, ticket lookups) are
// public; every mutation lives behind JWT auth.  An optional rate-limit
// middleware is applied to the booking write paths.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	e.POST("/v1/auth/login", h.Auth.Login)

	// Public browse endpoints.  Guests can inspect the catalog, the
	// schedule and live seat availability without a token.
	e.GET("/v1/movies", h.Movies.List)
	e.GET("/v1/movies/:id", h.Movies.Get)
	e.GET("/v1/sessions", h.Sessions.List)
	e.GET("/v1/sessions/:id", h.Sessions.Get)
	e.GET("/v1/sessions/:id/seats", h.Sessions.SeatMap)
	e.GET("/v1/sessions/:id/availability", h.Sessions.Availability)
	e.GET("/v1/tickets", h.Tickets.List)
	e.GET("/v1/tickets/:id", h.Tickets.Get)

	// Everything below requires a valid access token.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	auth.POST("/movies", h.Movies.Create)
	auth.PUT("/movies/:id", h.Movies.Update)
	auth.DELETE("/movies/:id", h.Movies.Delete)

	auth.POST("/sessions", h.Sessions.Create)
	auth.PUT("/sessions/:id", h.Sessions.Update)
	auth.DELETE("/sessions/:id", h.Sessions.Delete)
	auth.GET("/sessions/:id/tickets.csv", h.Tickets.ExportCSV)

	// Booking writes additionally pass through the rate limiter so a
	// misbehaving client cannot hammer the seat-claim path.
	booking := auth.Group("")
	if rateLimit != nil {
		booking.Use(rateLimit)
	}
	booking.POST("/tickets", h.Tickets.Reserve)
	booking.POST("/tickets/:id/pay", h.Tickets.Pay)
	booking.PATCH("/tickets/:id", h.Tickets.Move)
	booking.DELETE("/tickets/:id", h.Tickets.Delete)
}
