package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"gowa-relay/config"
)

// WebhookPayload is the body POSTed to the tenant's endpoint.
type WebhookPayload struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"sessionId"`
	Data      interface{} `json:"data"`
}

// Notifier relays inbound events to the tenant's webhook, fire-and-forget.
// Delivery is at-most-once: bounded timeout, no retry, failures logged and
// dropped. It must never block or fail the event path that triggered it.
type Notifier struct {
	cfg       *config.Config
	instances InstanceStore
	client    *http.Client
}

func NewNotifier(cfg *config.Config, instances InstanceStore) *Notifier {
	return &Notifier{
		cfg:       cfg,
		instances: instances,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify is a no-op when no webhook URL is configured for the tenant.
func (n *Notifier) Notify(sessionID, event string, data interface{}) {
	if n == nil || !n.cfg.EnableWebhook {
		return
	}

	url, secret := n.resolveTarget(sessionID)
	if url == "" {
		return
	}

	payload := WebhookPayload{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Data:      data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("webhook: marshal error: %v", err)
		return
	}

	go n.deliver(url, secret, body)
}

func (n *Notifier) resolveTarget(sessionID string) (string, string) {
	url, secret, err := n.instances.WebhookConfig(sessionID)
	if err != nil {
		log.Printf("webhook: failed to read config for %s: %v", sessionID, err)
	}
	if url == "" {
		url, secret = n.cfg.WebhookURL, n.cfg.WebhookSecret
	}
	return url, secret
}

func (n *Notifier) deliver(url, secret string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("webhook: new request error: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		req.Header.Set("X-Gateway-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("webhook: send error: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("webhook: endpoint returned status %d", resp.StatusCode)
	}
}
