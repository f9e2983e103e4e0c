package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
)

// TicketHandler serves door validation for staff.
type TicketHandler struct {
    validator *service.TicketValidator
    logger    *logrus.Logger
}

func NewTicketHandler(validator *service.TicketValidator, logger *logrus.Logger) *TicketHandler {
    return &TicketHandler{validator: validator, logger: logger}
}

type admissionResponse struct {
    Booking  model.Booking  `json:"booking"`
    Seat     model.SeatCode `json:"seat"`
    TicketID string         `json:"ticket_id"`
    UsedAt   *time.Time     `json:"used_at"`
}

// Validate handles POST /v1/tickets/validate with body {"token": "..."}.
func (h *TicketHandler) Validate(c echo.Context) error {
    var body struct {
        Token string `json:"token"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    return h.admit(c, body.Token)
}

// Scan handles GET /v1/tickets/scan?token=..., the URL encoded in ticket QR
// codes.
func (h *TicketHandler) Scan(c echo.Context) error {
    return h.admit(c, c.QueryParam("token"))
}

func (h *TicketHandler) admit(c echo.Context, token string) error {
    token = strings.TrimSpace(token)
    if token == "" {
        return badRequest(c, "token is required")
    }
    adm, err := h.validator.Validate(c.Request().Context(), token)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, admissionResponse{
        Booking:  adm.Booking,
        Seat:     adm.Seat,
        TicketID: adm.Ticket.ID,
        UsedAt:   adm.Ticket.UsedAt,
    })
}
