package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrInstanceNotFound = errors.New("instance not found")

// InstanceDB reads per-tenant config values (webhook target, daily limit)
// and mirrors session status into the instances table. The table itself is
// managed by the admin application; the gateway only consumes it.
type InstanceDB struct {
	DB *sql.DB
}

// Ensure membuat row instance kalau belum ada.
func (s *InstanceDB) Ensure(sessionID string) error {
	_, err := s.DB.Exec(`
        INSERT INTO instances (instance_id, status, is_connected, created_at)
        VALUES ($1, 'disconnected', FALSE, NOW())
        ON CONFLICT (instance_id) DO NOTHING
    `, sessionID)
	return err
}

func (s *InstanceDB) UpdateOnConnected(sessionID, jid, phoneNumber string) error {
	_, err := s.DB.Exec(`
        UPDATE instances
        SET jid           = $1,
            phone_number  = $2,
            status        = 'online',
            is_connected  = TRUE,
            qr_code       = NULL,
            connected_at  = NOW()
        WHERE instance_id = $3
    `, jid, phoneNumber, sessionID)
	return err
}

func (s *InstanceDB) UpdateStatus(sessionID, status string, connected bool) error {
	_, err := s.DB.Exec(`
        UPDATE instances
        SET status          = $1,
            is_connected    = $2,
            disconnected_at = CASE WHEN $2 THEN disconnected_at ELSE NOW() END
        WHERE instance_id = $3
    `, status, connected, sessionID)
	return err
}

func (s *InstanceDB) UpdateQR(sessionID, code string, expiresAt time.Time) error {
	_, err := s.DB.Exec(`
        UPDATE instances
        SET qr_code       = $1,
            qr_expires_at = $2,
            status        = 'qr_required'
        WHERE instance_id = $3
    `, code, expiresAt, sessionID)
	return err
}

// WebhookConfig returns the tenant webhook target; empty strings when the
// tenant has none configured.
func (s *InstanceDB) WebhookConfig(sessionID string) (string, string, error) {
	var url, secret sql.NullString
	err := s.DB.QueryRow(`
        SELECT webhook_url, webhook_secret FROM instances WHERE instance_id = $1
    `, sessionID).Scan(&url, &secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", nil
		}
		return "", "", err
	}
	return url.String, secret.String, nil
}

// DailyLimit returns the per-tenant cap override; ok=false means the global
// config value applies.
func (s *InstanceDB) DailyLimit(sessionID string) (int, bool, error) {
	var limit sql.NullInt64
	err := s.DB.QueryRow(`
        SELECT daily_limit FROM instances WHERE instance_id = $1
    `, sessionID).Scan(&limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !limit.Valid {
		return 0, false, nil
	}
	return int(limit.Int64), true, nil
}

func (s *InstanceDB) SetWebhook(sessionID, url, secret string) error {
	res, err := s.DB.Exec(`
        UPDATE instances
        SET webhook_url    = $1,
            webhook_secret = $2
        WHERE instance_id = $3
    `, url, secret, sessionID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInstanceNotFound
	}
	return nil
}
