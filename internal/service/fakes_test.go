package service

import (
	"context"
	"sync"
	"time"

	"gowa-relay/internal/waclient"
)

// fakeClient is an in-memory waclient.Client for service tests.
type fakeClient struct {
	mu sync.Mutex

	loggedIn  bool
	connected bool
	jid       string

	connectErr error
	sendErr    error

	connectCalls  int
	sentBodies    []string
	sentTo        []string
	logoutCalls   int
	deleteCalls   int
	presenceCalls int

	checkResults []waclient.CheckResult

	// pairEvents is replayed to each PairChannel consumer.
	pairEvents []waclient.PairEvent
	pairCalls  int

	// emitOnConnect delivers a ConnectedEvent through the registered handler
	// as the real client does after the socket comes up.
	emitOnConnect bool
	handler       func(evt interface{})
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.mu.Lock()
	f.connectCalls++
	err := f.connectErr
	if err == nil {
		f.connected = true
	}
	emit := err == nil && f.emitOnConnect
	h := f.handler
	jid := f.jid
	f.mu.Unlock()

	if emit && h != nil {
		h(waclient.ConnectedEvent{JID: jid})
	}
	return err
}

func (f *fakeClient) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.connected = false
	f.loggedIn = false
	return nil
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) IsLoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}

func (f *fakeClient) JID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jid
}

func (f *fakeClient) SendText(ctx context.Context, toJID, body string) (waclient.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return waclient.SendResult{}, f.sendErr
	}
	f.sentTo = append(f.sentTo, toJID)
	f.sentBodies = append(f.sentBodies, body)
	return waclient.SendResult{ID: "MSG-FAKE-1", Timestamp: time.Unix(1700000000, 0)}, nil
}

func (f *fakeClient) SendImage(ctx context.Context, toJID string, data, thumbnail []byte, mimeType, caption string) (waclient.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return waclient.SendResult{}, f.sendErr
	}
	f.sentTo = append(f.sentTo, toJID)
	f.sentBodies = append(f.sentBodies, caption)
	return waclient.SendResult{ID: "IMG-FAKE-1", Timestamp: time.Unix(1700000000, 0)}, nil
}

func (f *fakeClient) ChatPresence(ctx context.Context, toJID string, composing bool) error {
	return nil
}

func (f *fakeClient) Presence(ctx context.Context, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presenceCalls++
	return nil
}

func (f *fakeClient) MarkRead(ctx context.Context, chatJID string, messageIDs []string, timestamp time.Time) error {
	return nil
}

func (f *fakeClient) IsOnWhatsApp(ctx context.Context, numbers []string) ([]waclient.CheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkResults, nil
}

func (f *fakeClient) PairChannel(ctx context.Context) (<-chan waclient.PairEvent, error) {
	f.mu.Lock()
	f.pairCalls++
	events := make([]waclient.PairEvent, len(f.pairEvents))
	copy(events, f.pairEvents)
	f.mu.Unlock()

	out := make(chan waclient.PairEvent, len(events)+1)
	for _, e := range events {
		out <- e
	}
	close(out)
	return out, nil
}

func (f *fakeClient) SetEventHandler(h func(evt interface{})) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeClient) DeleteCredentials(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return nil
}

func (f *fakeClient) ConnectCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls
}

func (f *fakeClient) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sentTo)
}

func (f *fakeClient) PairCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairCalls
}

func (f *fakeClient) SetPairEvents(events []waclient.PairEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairEvents = events
}

type fakeFactory struct {
	client *fakeClient
}

func (f *fakeFactory) NewClient(sessionID, jid string) (waclient.Client, error) {
	return f.client, nil
}

// fakeInstances is an in-memory InstanceStore.
type fakeInstances struct {
	mu sync.Mutex

	ensured   map[string]bool
	statuses  map[string]string
	webhooks  map[string][2]string
	limits    map[string]int
	connected map[string]string // sessionID -> jid
}

func newFakeInstances() *fakeInstances {
	return &fakeInstances{
		ensured:   make(map[string]bool),
		statuses:  make(map[string]string),
		webhooks:  make(map[string][2]string),
		limits:    make(map[string]int),
		connected: make(map[string]string),
	}
}

func (f *fakeInstances) Ensure(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured[sessionID] = true
	return nil
}

func (f *fakeInstances) UpdateOnConnected(sessionID, jid, phoneNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected[sessionID] = jid
	f.statuses[sessionID] = "connected"
	return nil
}

func (f *fakeInstances) UpdateStatus(sessionID, status string, connected bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[sessionID] = status
	return nil
}

func (f *fakeInstances) UpdateQR(sessionID, code string, expiresAt time.Time) error {
	return nil
}

func (f *fakeInstances) WebhookConfig(sessionID string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wh := f.webhooks[sessionID]
	return wh[0], wh[1], nil
}

func (f *fakeInstances) DailyLimit(sessionID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit, ok := f.limits[sessionID]
	return limit, ok, nil
}

func (f *fakeInstances) SetWebhook(sessionID, url, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhooks[sessionID] = [2]string{url, secret}
	return nil
}

func (f *fakeInstances) StatusOf(sessionID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[sessionID]
}
