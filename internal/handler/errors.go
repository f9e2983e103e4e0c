package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
)

// statusFor maps service error kinds to HTTP status codes.
func statusFor(kind service.Kind) int {
    switch kind {
    case service.KindSeatUnavailable, service.KindHoldExpired,
        service.KindTicketAlreadyUsed, service.KindTicketCancelled:
        return http.StatusConflict
    case service.KindTokenInvalid:
        return http.StatusUnauthorized
    case service.KindTokenExpired:
        return http.StatusGone
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindForbidden:
        return http.StatusForbidden
    case service.KindIssuanceFailed:
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}

// writeError renders err as {"error": kind, "reason": reason}.  Internal
// errors are logged with their stack and never leak details to clients.
func writeError(c echo.Context, logger *logrus.Logger, err error) error {
    kind := service.KindOf(err)
    status := statusFor(kind)
    if status >= http.StatusInternalServerError {
        logger.WithContext(c.Request().Context()).
            WithError(err).
            WithField("stack", errs.StackLines(err, 12)).
            Error("request failed")
    }
    body := echo.Map{"error": string(kind)}
    if reason := service.ReasonOf(err); reason != "" {
        body["reason"] = reason
    }
    return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "reason": msg})
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
