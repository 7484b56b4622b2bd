package handler

import (
	"log"
	"net/http"

	"gowa-relay/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GET /ws
// Klien menerima stream event realtime, difilter ke session miliknya.
func (h *Handler) WebSocket(c echo.Context) error {
	if h.Hub == nil {
		return ErrorResponse(c, http.StatusServiceUnavailable,
			"Realtime events are disabled", "WEBSOCKET_DISABLED", "")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return err
	}

	client := ws.NewClient(h.Hub, conn)
	client.SessionID = sessionID(c)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
