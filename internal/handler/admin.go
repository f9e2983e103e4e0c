package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
)

// AdminHandler serves the damage-report workflow and ledger inspection.
type AdminHandler struct {
    damage *service.DamageCorrelator
    ledger *service.SeatLedger
    logger *logrus.Logger
}

func NewAdminHandler(damage *service.DamageCorrelator, ledger *service.SeatLedger, logger *logrus.Logger) *AdminHandler {
    return &AdminHandler{damage: damage, ledger: ledger, logger: logger}
}

type attributionResponse struct {
    ShowID     string              `json:"show_id"`
    Seat       model.SeatCode      `json:"seat"`
    At         time.Time           `json:"at"`
    Candidates []service.Candidate `json:"candidates"`
}

// Attribution handles GET /v1/admin/damage/attribution?show_id=&seat=&at=
// where at is RFC 3339.  Every occupant covering at is returned.
func (h *AdminHandler) Attribution(c echo.Context) error {
    showID := c.QueryParam("show_id")
    if showID == "" {
        return badRequest(c, "show_id is required")
    }
    seat, err := model.ParseSeatCode(c.QueryParam("seat"))
    if err != nil {
        return badRequest(c, "invalid seat")
    }
    at, err := time.Parse(time.RFC3339Nano, c.QueryParam("at"))
    if err != nil {
        return badRequest(c, "at must be an RFC 3339 timestamp")
    }
    report := model.DamageReport{ShowID: showID, Seat: seat, Timestamp: at.UTC()}
    candidates, err := h.damage.AttributeReport(c.Request().Context(), report)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, attributionResponse{
        ShowID:     showID,
        Seat:       seat,
        At:         report.Timestamp,
        Candidates: candidates,
    })
}

// SeatEntry handles GET /v1/admin/shows/:id/seats/:code and returns the
// ledger entry with its occupancy history.
func (h *AdminHandler) SeatEntry(c echo.Context) error {
    seat, err := model.ParseSeatCode(c.Param("code"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": string(service.KindNotFound), "reason": "invalid seat code"})
    }
    entry, err := h.ledger.Entry(c.Request().Context(), c.Param("id"), seat)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, entry)
}
