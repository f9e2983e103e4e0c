package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/auditorium-seat-reservation/internal/handler"
    "github.com/iliyamo/auditorium-seat-reservation/internal/middleware"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
    Health  *handler.HealthHandler
    Show    *handler.ShowHandler
    Booking *handler.BookingHandler
    Ticket  *handler.TicketHandler
    Admin   *handler.AdminHandler
}

// Middlewares holds the optional Redis-backed middleware.  Nil entries are
// skipped.
type Middlewares struct {
    RateLimit echo.MiddlewareFunc
    Cache     echo.MiddlewareFunc
}

// RegisterRoutes wires every endpoint.  /healthz and the show catalog are
// public; everything else under /v1 requires a bearer token from the
// identity provider.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middlewares, jwtSecret string) {
    e.GET("/healthz", h.Health.Health)

    e.GET("/v1/shows/:id", h.Show.GetShow, optional(mw.Cache)...)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))

    // Students reserve; rate limited to absorb retry storms on popular seats.
    reserve := append([]echo.MiddlewareFunc{middleware.RequireRole(model.RoleStudent)}, optional(mw.RateLimit)...)
    auth.POST("/shows/:id/seats/:code/reserve", h.Booking.Reserve, reserve...)

    // Ownership of bookings is enforced by the booking manager.
    owners := middleware.RequireRole(model.RoleStudent, model.RoleAdmin)
    auth.POST("/bookings/:id/cancel", h.Booking.Cancel, owners)
    auth.GET("/bookings/:id", h.Booking.Get, owners)

    door := append([]echo.MiddlewareFunc{middleware.RequireRole(model.RoleStaff, model.RoleAdmin)}, optional(mw.RateLimit)...)
    auth.POST("/tickets/validate", h.Ticket.Validate, door...)
    auth.GET("/tickets/scan", h.Ticket.Scan, door...)

    admin := auth.Group("/admin", middleware.RequireRole(model.RoleAdmin))
    admin.GET("/damage/attribution", h.Admin.Attribution)
    admin.GET("/shows/:id/seats/:code", h.Admin.SeatEntry)
}

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
    if mw == nil {
        return nil
    }
    return []echo.MiddlewareFunc{mw}
}
