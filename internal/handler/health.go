package handler // package handler contains the HTTP handlers of the reservation API

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler answers load balancer probes.  When a database is
// configured it must answer a ping within one second.
type HealthHandler struct {
    db Pinger
}

// NewHealthHandler returns a handler; db may be nil for the in-memory store.
func NewHealthHandler(db Pinger) *HealthHandler {
    return &HealthHandler{db: db}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(c echo.Context) error {
    if h.db != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
        defer cancel()
        if err := h.db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": "database unreachable"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
