package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GET /health
func (h *Handler) Health(c echo.Context) error {
	return SuccessResponse(c, http.StatusOK, "Gateway is running", map[string]interface{}{
		"status":            "ok",
		"uptime":            int64(time.Since(h.StartTime).Seconds()),
		"whatsappConnected": h.Manager.ConnectedCount() > 0,
	})
}
