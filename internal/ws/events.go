package ws

import "time"

// Event names yang dikirim ke client websocket.
const (
	EventQRGenerated          = "qr_generated"
	EventQRSuccess            = "qr_success"
	EventQRTimeout            = "qr_timeout"
	EventSessionStatusChanged = "session_status_changed"
	EventIncomingMessage      = "incoming_message"
	EventSessionError         = "session_error"
)

type WsEvent struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data"`
}

// RealtimePublisher dipegang oleh service supaya tidak tergantung langsung
// ke Hub.
type RealtimePublisher interface {
	Publish(event WsEvent)
}
