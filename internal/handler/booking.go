package handler

import (
    "encoding/base64"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/middleware"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
)

// BookingHandler exposes reserve, cancel and booking lookup.  All routes
// assume JWTAuth ran first.
type BookingHandler struct {
    manager *service.BookingManager
    logger  *logrus.Logger
}

func NewBookingHandler(manager *service.BookingManager, logger *logrus.Logger) *BookingHandler {
    return &BookingHandler{manager: manager, logger: logger}
}

type ticketView struct {
    ID        string             `json:"id"`
    Token     string             `json:"token"`
    Status    model.TicketStatus `json:"status"`
    ExpiresAt time.Time          `json:"expires_at"`
}

type reserveResponse struct {
    Booking model.Booking `json:"booking"`
    Ticket  ticketView    `json:"ticket"`
    QRCode  string        `json:"qr_code"` // base64 PNG
}

type cancelResponse struct {
    Booking          model.Booking `json:"booking"`
    AlreadyCancelled bool          `json:"already_cancelled"`
}

// Reserve handles POST /v1/shows/:id/seats/:code/reserve.  An invalid seat
// code is reported as not found, like a seat outside the grid.
func (h *BookingHandler) Reserve(c echo.Context) error {
    caller, ok := middleware.CallerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    seat, err := model.ParseSeatCode(c.Param("code"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": string(service.KindNotFound), "reason": "invalid seat code"})
    }
    res, err := h.manager.Reserve(c.Request().Context(), c.Param("id"), seat, caller.Student())
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusCreated, reserveResponse{
        Booking: res.Booking,
        Ticket: ticketView{
            ID:        res.Ticket.ID,
            Token:     res.Ticket.Token,
            Status:    res.Ticket.Status,
            ExpiresAt: res.Ticket.ExpiresAt,
        },
        QRCode: base64.StdEncoding.EncodeToString(res.QRCode),
    })
}

// Cancel handles POST /v1/bookings/:id/cancel.  Repeated calls succeed and
// report already_cancelled.
func (h *BookingHandler) Cancel(c echo.Context) error {
    caller, ok := middleware.CallerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    res, err := h.manager.Cancel(c.Request().Context(), c.Param("id"), caller)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, cancelResponse{Booking: res.Booking, AlreadyCancelled: res.AlreadyCancelled})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    caller, ok := middleware.CallerFrom(c)
    if !ok {
        return unauthorized(c)
    }
    b, err := h.manager.Get(c.Request().Context(), c.Param("id"), caller)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, b)
}
