package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
    "github.com/iliyamo/auditorium-seat-reservation/internal/repository"
    "github.com/iliyamo/auditorium-seat-reservation/internal/service"
)

// ShowHandler serves the read-only show catalog.  Responses are safe to
// cache because shows never change.
type ShowHandler struct {
    catalog service.ShowCatalog
    logger  *logrus.Logger
}

func NewShowHandler(catalog service.ShowCatalog, logger *logrus.Logger) *ShowHandler {
    return &ShowHandler{catalog: catalog, logger: logger}
}

// GetShow handles GET /v1/shows/:id.
func (h *ShowHandler) GetShow(c echo.Context) error {
    show, err := h.catalog.GetShow(c.Request().Context(), c.Param("id"))
    if errs.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": string(service.KindNotFound)})
    }
    if err != nil {
        h.logger.WithContext(c.Request().Context()).WithError(err).Error("load show")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": string(service.KindInternal)})
    }
    return c.JSON(http.StatusOK, show)
}
