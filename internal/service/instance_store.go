package service

import "time"

// InstanceStore is the slice of the business DB the gateway consumes:
// per-tenant config values plus a status mirror for the operator UI.
// Implemented by model.InstanceDB.
type InstanceStore interface {
	Ensure(sessionID string) error
	UpdateOnConnected(sessionID, jid, phoneNumber string) error
	UpdateStatus(sessionID, status string, connected bool) error
	UpdateQR(sessionID, code string, expiresAt time.Time) error
	WebhookConfig(sessionID string) (url, secret string, err error)
	DailyLimit(sessionID string) (int, bool, error)
	SetWebhook(sessionID, url, secret string) error
}
