package handler

import (
	"time"

	"gowa-relay/config"
	"gowa-relay/internal/service"
	"gowa-relay/internal/ws"

	"github.com/labstack/echo/v4"
)

// Handler bundles the gateway's HTTP surface dependencies.
type Handler struct {
	Cfg        *config.Config
	Manager    *service.Manager
	Dispatcher *service.Dispatcher
	Instances  service.InstanceStore
	Hub        *ws.Hub
	StartTime  time.Time
}

// sessionID resolves the tenant session for a request: bearer token claim
// first, then the X-Session-ID header, then the default session.
func sessionID(c echo.Context) string {
	if id, ok := c.Get("session_id").(string); ok && id != "" {
		return id
	}
	if id := c.Request().Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return "default"
}
