// Package waclient is the boundary to the WhatsApp protocol library. The
// rest of the gateway only sees this interface; the wire protocol and the
// cryptographic handshake stay inside the adapter.
package waclient

import (
	"context"
	"time"
)

// SendResult is what the network reports back for an accepted message.
type SendResult struct {
	ID        string
	Timestamp time.Time
}

// CheckResult is one entry of an existence probe.
type CheckResult struct {
	Query  string
	JID    string
	Exists bool
}

// PairEvent mirrors the pairing challenge stream: Event is "code",
// "success", "timeout" or an err-* string; Code carries the QR payload.
type PairEvent struct {
	Event string
	Code  string
}

// Connection lifecycle events, delivered through the handler registered with
// SetEventHandler. Delivery order matches arrival order on the socket.
type (
	ConnectedEvent struct {
		JID string
	}

	// DisconnectedEvent is a transient socket close; the session manager
	// decides whether to reconnect.
	DisconnectedEvent struct{}

	// LoggedOutEvent means the remote side unlinked this device. Terminal.
	LoggedOutEvent struct {
		Reason string
	}

	StreamReplacedEvent struct{}

	PairSuccessEvent struct {
		JID string
	}

	MessageEvent struct {
		ID        string
		Chat      string
		Sender    string
		PushName  string
		Body      string
		Timestamp time.Time
		FromMe    bool
	}

	ReceiptEvent struct {
		MessageIDs []string
		Chat       string
		Kind       string // delivered / read / played
		Timestamp  time.Time
	}
)

// Client is the protocol client for one session.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect()
	Logout(ctx context.Context) error
	IsConnected() bool
	IsLoggedIn() bool
	JID() string

	SendText(ctx context.Context, toJID, body string) (SendResult, error)
	SendImage(ctx context.Context, toJID string, data, thumbnail []byte, mimeType, caption string) (SendResult, error)
	ChatPresence(ctx context.Context, toJID string, composing bool) error
	Presence(ctx context.Context, available bool) error
	MarkRead(ctx context.Context, chatJID string, messageIDs []string, timestamp time.Time) error
	IsOnWhatsApp(ctx context.Context, numbers []string) ([]CheckResult, error)

	// PairChannel must be opened before Connect on a fresh device.
	PairChannel(ctx context.Context) (<-chan PairEvent, error)

	SetEventHandler(h func(evt interface{}))

	// DeleteCredentials wipes the device registration from the store.
	DeleteCredentials(ctx context.Context) error
}

// Factory binds session ids to protocol clients. jid is the previously
// stored device identity, empty for a brand new pairing.
type Factory interface {
	NewClient(sessionID, jid string) (Client, error)
}
