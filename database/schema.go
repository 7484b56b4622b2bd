package database

import "log"

// EnsureSchema membuat table instances kalau belum ada. Gateway hanya
// membaca config values (webhook, daily limit) dan menulis status mirror.
func EnsureSchema() {
	_, err := AppDB.Exec(`
        CREATE TABLE IF NOT EXISTS instances (
            instance_id     VARCHAR(64) PRIMARY KEY,
            jid             VARCHAR(128),
            phone_number    VARCHAR(32),
            status          VARCHAR(32) NOT NULL DEFAULT 'disconnected',
            is_connected    BOOLEAN NOT NULL DEFAULT FALSE,
            qr_code         TEXT,
            qr_expires_at   TIMESTAMPTZ,
            webhook_url     TEXT,
            webhook_secret  TEXT,
            daily_limit     INTEGER,
            created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            connected_at    TIMESTAMPTZ,
            disconnected_at TIMESTAMPTZ
        )
    `)
	if err != nil {
		log.Fatal("Failed to ensure instances schema:", err)
	}
	log.Println("Schema instances OK")
}
