package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"gowa-relay/config"
	"gowa-relay/internal/credstore"
	"gowa-relay/internal/helper"
	"gowa-relay/internal/model"
	"gowa-relay/internal/waclient"
	"gowa-relay/internal/ws"
)

const qrChallengeTTL = 60 * time.Second

// StatusSnapshot is what GET /auth/status reports.
type StatusSnapshot struct {
	SessionID         string              `json:"sessionId"`
	Status            model.SessionStatus `json:"status"`
	IsConnected       bool                `json:"isConnected"`
	MessagesSentToday int                 `json:"messagesSentToday"`
	DailyLimit        int                 `json:"dailyLimit"`
}

// Manager owns the session registry and every session's lifecycle: connect,
// pairing, supervised reconnect, terminal logout. It is the sole mutator of
// session state.
type Manager struct {
	cfg       *config.Config
	factory   waclient.Factory
	creds     *credstore.Store
	instances InstanceStore
	notifier  *Notifier

	// Realtime boleh nil (websocket events dimatikan).
	Realtime ws.RealtimePublisher

	mu       sync.RWMutex
	sessions map[string]*model.Session
}

func NewManager(cfg *config.Config, factory waclient.Factory, creds *credstore.Store, instances InstanceStore, notifier *Notifier) *Manager {
	return &Manager{
		cfg:       cfg,
		factory:   factory,
		creds:     creds,
		instances: instances,
		notifier:  notifier,
		sessions:  make(map[string]*model.Session),
	}
}

// Get returns the live session, if any. It never creates one.
func (m *Manager) Get(sessionID string) (*model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// GetOrCreate returns the session for a tenant, creating and connecting it
// on first use. Credentials saved by an earlier run are used to re-bind the
// session to its device without re-pairing.
func (m *Manager) GetOrCreate(sessionID string) (*model.Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		m.revivePairing(s)
		return s, nil
	}

	jid := ""
	if creds, err := m.creds.Load(sessionID); err == nil {
		jid = creds.JID
	}

	client, err := m.factory.NewClient(sessionID, jid)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	s := model.NewSession(sessionID, client)
	ctx, cancel := context.WithCancel(context.Background())
	s.Ctx = ctx
	s.Cancel = cancel

	client.SetEventHandler(func(evt interface{}) {
		m.enqueueEvent(ctx, s, evt)
	})

	m.sessions[sessionID] = s
	m.mu.Unlock()

	if err := m.instances.Ensure(sessionID); err != nil {
		log.Printf("Warning: failed to ensure instance row for %s: %v", sessionID, err)
	}

	go m.loop(ctx, s)
	m.connect(ctx, s)

	return s, nil
}

// revivePairing restarts the QR flow for a registered session that fell back
// to disconnected without ever pairing (challenge expired or the pair channel
// errored). Each /auth/qr poll gets a fresh window; TryPairing keeps loops
// from stacking.
func (m *Manager) revivePairing(s *model.Session) {
	if s.LoggingOut() || s.Client.IsLoggedIn() {
		return
	}
	if s.Status() != model.StatusDisconnected {
		return
	}
	m.connect(s.Ctx, s)
}

// enqueueEvent feeds the session loop. Message and receipt traffic may be
// dropped when the buffer is full; lifecycle events wait for a slot, a
// dropped Disconnected would strand the session with no reconnect.
func (m *Manager) enqueueEvent(ctx context.Context, s *model.Session, evt interface{}) {
	if s.LoggingOut() {
		return
	}

	switch evt.(type) {
	case waclient.MessageEvent, waclient.ReceiptEvent:
		select {
		case s.Events <- evt:
		default:
			log.Printf("session %s: event buffer full, dropping %T", s.ID, evt)
		}
	default:
		select {
		case s.Events <- evt:
		case <-ctx.Done():
		}
	}
}

// LoadSaved restores every session that has persisted credentials. Called
// once at boot.
func (m *Manager) LoadSaved() error {
	saved, err := m.creds.List()
	if err != nil {
		return err
	}

	for _, creds := range saved {
		if _, err := m.GetOrCreate(creds.SessionID); err != nil {
			log.Printf("Failed to restore session %s: %v", creds.SessionID, err)
			continue
		}
		log.Printf("✓ Restored session %s (jid %s)", creds.SessionID, creds.JID)
	}
	return nil
}

// Logout forces a terminal disconnect: unlink the device, wipe credentials
// and drop the session so a later request starts from scratch.
func (m *Manager) Logout(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return ErrLogoutConflict
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	s.SetLoggingOut()
	if s.Cancel != nil {
		s.Cancel()
	}

	ctx := context.Background()
	if err := s.Client.Logout(ctx); err != nil {
		log.Printf("Warning: failed to logout from WhatsApp for %s: %v", sessionID, err)
	}
	if err := s.Client.DeleteCredentials(ctx); err != nil {
		log.Printf("Warning: failed to delete device store for %s: %v", sessionID, err)
	}
	s.Client.Disconnect()

	if err := m.creds.Delete(sessionID); err != nil {
		log.Printf("Warning: failed to delete credentials for %s: %v", sessionID, err)
	}

	s.ClearQR()
	s.SetDisconnected(model.StatusDisconnected)

	if err := m.instances.UpdateStatus(sessionID, "logged_out", false); err != nil {
		log.Printf("Warning: failed to update instance status for %s: %v", sessionID, err)
	}
	m.publishStatus(s, "logged_out")

	log.Println("✓ Device logged out, session cleared:", sessionID)
	return nil
}

// DailyLimit resolves the cap for a tenant: per-instance override first,
// global config otherwise.
func (m *Manager) DailyLimit(sessionID string) int {
	if limit, ok, err := m.instances.DailyLimit(sessionID); err == nil && ok {
		return limit
	}
	return m.cfg.DailySendLimit
}

// Status returns the operator-visible snapshot. The counter gets the same
// lazy daily reset as the send path.
func (m *Manager) Status(sessionID string) (*StatusSnapshot, bool) {
	s, ok := m.Get(sessionID)
	if !ok {
		return nil, false
	}

	today := time.Now().Format(dateLayout)
	return &StatusSnapshot{
		SessionID:         sessionID,
		Status:            s.Status(),
		IsConnected:       s.IsConnected(),
		MessagesSentToday: s.CounterSnapshot(today),
		DailyLimit:        m.DailyLimit(sessionID),
	}, true
}

// ConnectedCount reports how many sessions currently hold a live link.
func (m *Manager) ConnectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.IsConnected() {
			count++
		}
	}
	return count
}

// connect moves a session out of disconnected: straight to the network for a
// paired device, through the QR flow otherwise.
func (m *Manager) connect(ctx context.Context, s *model.Session) {
	s.SetStatus(model.StatusConnecting)

	if s.Client.IsLoggedIn() {
		if err := s.Client.Connect(ctx); err != nil {
			log.Printf("Failed to connect session %s: %v", s.ID, err)
			s.SetDisconnected(model.StatusDisconnected)
			m.scheduleReconnect(ctx, s)
		}
		return
	}

	go m.pairLoop(ctx, s)
}

// pairLoop drives a fresh pairing: it caches each QR challenge on the
// session until consumed or superseded.
func (m *Manager) pairLoop(ctx context.Context, s *model.Session) {
	if !s.TryPairing() {
		return
	}
	defer s.DonePairing()

	qrCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	pairChan, err := s.Client.PairChannel(qrCtx)
	if err != nil {
		log.Printf("Failed to get pair channel for %s: %v", s.ID, err)
		s.SetDisconnected(model.StatusDisconnected)
		return
	}

	if err := s.Client.Connect(qrCtx); err != nil {
		log.Printf("Failed to connect session %s for pairing: %v", s.ID, err)
		s.SetDisconnected(model.StatusDisconnected)
		return
	}

	for evt := range pairChan {
		switch evt.Event {
		case "code":
			s.SetQR(evt.Code)
			if err := m.instances.UpdateQR(s.ID, evt.Code, time.Now().Add(qrChallengeTTL)); err != nil {
				log.Printf("Warning: failed to store QR for %s: %v", s.ID, err)
			}
			m.publish(ws.WsEvent{
				Event:     ws.EventQRGenerated,
				SessionID: s.ID,
				Data: map[string]interface{}{
					"qrCode":    evt.Code,
					"expiresAt": time.Now().Add(qrChallengeTTL).UTC(),
				},
			})

		case "success":
			log.Println("✓ QR scanned, pairing successful for session:", s.ID)
			s.ClearQR()
			m.publish(ws.WsEvent{Event: ws.EventQRSuccess, SessionID: s.ID})
			return

		case "timeout":
			log.Println("✗ QR timeout for session:", s.ID)
			s.ClearQR()
			s.SetDisconnected(model.StatusDisconnected)
			m.publish(ws.WsEvent{Event: ws.EventQRTimeout, SessionID: s.ID})
			return

		default:
			log.Printf("✗ QR error for session %s: %s", s.ID, evt.Event)
			s.ClearQR()
			s.SetDisconnected(model.StatusDisconnected)
			m.publish(ws.WsEvent{
				Event:     ws.EventSessionError,
				SessionID: s.ID,
				Data:      map[string]interface{}{"error": evt.Event},
			})
			return
		}
	}
}

// loop is the single consumer of a session's event channel; transitions are
// applied in arrival order.
func (m *Manager) loop(ctx context.Context, s *model.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-s.Events:
			m.handleEvent(ctx, s, evt)
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, s *model.Session, evt interface{}) {
	switch evt := evt.(type) {
	case waclient.ConnectedEvent:
		if s.LoggingOut() {
			return
		}
		s.SetConnected(evt.JID)

		if evt.JID != "" {
			if err := m.creds.Save(s.ID, evt.JID); err != nil {
				log.Printf("Warning: failed to save credentials for %s: %v", s.ID, err)
			}
			if err := m.instances.UpdateOnConnected(s.ID, evt.JID, helper.BareNumber(evt.JID)); err != nil {
				log.Printf("Warning: failed to update instance on connected: %v", err)
			}
		}

		// Presence available supaya status online di HP
		if err := s.Client.Presence(ctx, true); err != nil {
			log.Printf("Warning: failed to send presence for %s: %v", s.ID, err)
		}

		log.Println("✓ Connected! Session:", s.ID, "JID:", evt.JID)
		m.publishStatus(s, "online")

	case waclient.PairSuccessEvent:
		log.Println("✓ Pair success for session:", s.ID)

	case waclient.LoggedOutEvent:
		// Remote menghapus device: terminal, bersihkan semua credential.
		log.Printf("✗ Logged out by remote (%s), session: %s", evt.Reason, s.ID)
		m.remoteLogout(ctx, s)

	case waclient.StreamReplacedEvent:
		log.Println("⚠ Stream replaced, session:", s.ID)

	case waclient.DisconnectedEvent:
		if s.LoggingOut() {
			return
		}
		log.Println("⚠ Disconnected, session:", s.ID)
		s.SetDisconnected(model.StatusDisconnected)
		if err := m.instances.UpdateStatus(s.ID, "disconnected", false); err != nil {
			log.Printf("Warning: failed to update instance on disconnected: %v", err)
		}
		m.publishStatus(s, "disconnected")
		m.scheduleReconnect(ctx, s)

	case waclient.MessageEvent:
		if evt.FromMe {
			return
		}

		if m.cfg.SendReadReceipts {
			if err := s.Client.MarkRead(ctx, evt.Chat, []string{evt.ID}, evt.Timestamp); err != nil {
				log.Printf("Warning: failed to mark read for %s: %v", s.ID, err)
			}
		}

		data := map[string]interface{}{
			"messageId": evt.ID,
			"from":      helper.BareNumber(evt.Sender),
			"pushName":  evt.PushName,
			"body":      evt.Body,
			"timestamp": evt.Timestamp.Unix(),
		}
		m.notifier.Notify(s.ID, "incoming_message", data)
		if m.cfg.EnableWebsocketEvents {
			m.publish(ws.WsEvent{Event: ws.EventIncomingMessage, SessionID: s.ID, Data: data})
		}

	case waclient.ReceiptEvent:
		m.notifier.Notify(s.ID, "message_status", map[string]interface{}{
			"messageIds": evt.MessageIDs,
			"chat":       helper.BareNumber(evt.Chat),
			"status":     evt.Kind,
			"timestamp":  evt.Timestamp.Unix(),
		})
	}
}

// remoteLogout handles the explicit-logout close reason: terminal
// disconnect, credentials and cached challenge cleared.
func (m *Manager) remoteLogout(ctx context.Context, s *model.Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	s.SetLoggingOut()
	s.ClearQR()
	s.SetDisconnected(model.StatusDisconnected)

	if err := s.Client.DeleteCredentials(ctx); err != nil {
		log.Printf("Warning: failed to delete device store for %s: %v", s.ID, err)
	}
	if err := m.creds.Delete(s.ID); err != nil {
		log.Printf("Warning: failed to delete credentials for %s: %v", s.ID, err)
	}
	s.Client.Disconnect()

	if err := m.instances.UpdateStatus(s.ID, "logged_out", false); err != nil {
		log.Printf("Warning: failed to update instance on logged out: %v", err)
	}
	m.publishStatus(s, "logged_out")

	if s.Cancel != nil {
		s.Cancel()
	}
	log.Println("✓ Session cleanup completed for:", s.ID)
}

// scheduleReconnect starts the supervised reconnect for a recoverable drop.
// The first wait is always the full cool-down, growth is exponential up to
// the configured ceiling, retries are unbounded, and at most one attempt
// runs per session.
func (m *Manager) scheduleReconnect(ctx context.Context, s *model.Session) {
	if !s.Client.IsLoggedIn() {
		// Device belum pair, tidak ada gunanya reconnect loop.
		return
	}
	if !s.TryReconnect() {
		return
	}

	go func() {
		defer s.DoneReconnect()

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = m.cfg.ReconnectDelay
		b.MaxInterval = m.cfg.ReconnectMaxDelay
		b.MaxElapsedTime = 0 // retry selamanya
		b.RandomizationFactor = 0
		b.Reset()

		for {
			wait := b.NextBackOff()
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}

			if s.LoggingOut() {
				return
			}

			s.SetStatus(model.StatusConnecting)
			m.publishStatus(s, "connecting")

			err := s.Client.Connect(ctx)
			if err == nil {
				// Connected event dari client yang menyelesaikan transisi.
				return
			}
			log.Printf("Reconnect attempt failed for %s: %v", s.ID, err)
			s.SetDisconnected(model.StatusDisconnected)
		}
	}()
}

func (m *Manager) publish(event ws.WsEvent) {
	if m.Realtime == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	m.Realtime.Publish(event)
}

func (m *Manager) publishStatus(s *model.Session, status string) {
	data := map[string]interface{}{
		"status":      status,
		"isConnected": s.IsConnected(),
		"jid":         s.JID(),
	}
	m.publish(ws.WsEvent{Event: ws.EventSessionStatusChanged, SessionID: s.ID, Data: data})
	m.notifier.Notify(s.ID, "connection_update", data)
}
