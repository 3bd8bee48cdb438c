package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gadgetph/phone-catalog/internal/catalog"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	source catalog.Source
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(source catalog.Source) *HealthHandler {
	return &HealthHandler{source: source}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 if the product store is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.source.Ping(c.Request().Context()); err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			map[string]string{"status": "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
