package model

import (
	"context"
	"sync"

	"gowa-relay/internal/waclient"
)

type SessionStatus string

const (
	StatusDisconnected SessionStatus = "disconnected"
	StatusConnecting   SessionStatus = "connecting"
	StatusAwaitingScan SessionStatus = "awaiting_scan"
	StatusConnected    SessionStatus = "connected"
)

// Session is the in-memory state for one tenant connection. Lifecycle fields
// are owned by the session manager; the send counter is owned by the
// dispatcher and is only touched under SendMu.
type Session struct {
	ID     string
	Client waclient.Client

	// Events feeds the per-session loop; transitions are processed in
	// arrival order by a single goroutine.
	Events chan interface{}

	// Ctx/Cancel bound the session's goroutines; both owned by the manager.
	Ctx    context.Context
	Cancel context.CancelFunc

	mu           sync.RWMutex
	jid          string
	status       SessionStatus
	isConnected  bool
	qrCode       string
	loggingOut   bool
	reconnecting bool
	pairing      bool

	// SendMu serializes the send path per session: pacing delay and the
	// protocol send. An in-flight send holds it across the jitter and
	// typing sleeps, so the counter has its own mutex and status reads
	// never wait on a paced send.
	SendMu sync.Mutex

	CounterMu         sync.Mutex
	MessagesSentToday int
	CounterResetDate  string // YYYY-MM-DD
}

func NewSession(id string, client waclient.Client) *Session {
	return &Session{
		ID:     id,
		Client: client,
		Events: make(chan interface{}, 64),
		status: StatusDisconnected,
	}
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) SetStatus(status SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// SetConnected marks the link established and clears the cached challenge.
func (s *Session) SetConnected(jid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusConnected
	s.isConnected = true
	s.qrCode = ""
	if jid != "" {
		s.jid = jid
	}
}

func (s *Session) SetDisconnected(status SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.isConnected = false
}

func (s *Session) JID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jid
}

func (s *Session) QR() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qrCode
}

func (s *Session) SetQR(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qrCode = code
	s.status = StatusAwaitingScan
}

func (s *Session) ClearQR() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qrCode = ""
}

func (s *Session) LoggingOut() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggingOut
}

func (s *Session) SetLoggingOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggingOut = true
}

// TryReconnect claims the reconnect slot. Returns false when a previous
// attempt is still in flight, so at most one reconnect runs per session.
func (s *Session) TryReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reconnecting || s.loggingOut {
		return false
	}
	s.reconnecting = true
	return true
}

func (s *Session) DoneReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnecting = false
}

// TryPairing claims the QR pairing slot, mirror of TryReconnect.
func (s *Session) TryPairing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pairing || s.loggingOut {
		return false
	}
	s.pairing = true
	return true
}

func (s *Session) DonePairing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairing = false
}

// CounterSnapshot applies the lazy daily reset and returns the counter, so
// status reads across a day boundary never show yesterday's count.
func (s *Session) CounterSnapshot(today string) int {
	s.CounterMu.Lock()
	defer s.CounterMu.Unlock()
	if s.CounterResetDate != today {
		s.MessagesSentToday = 0
		s.CounterResetDate = today
	}
	return s.MessagesSentToday
}
