package config

import (
	"time"

	"gowa-relay/internal/helper"
)

// Config menampung semua setting gateway dari environment.
// Pacing values dikonsumsi oleh service, bukan handler.
type Config struct {
	Port           string
	DatabaseURL    string // whatsmeow device store
	AppDatabaseURL string // instances table (webhook config, daily limits)
	SessionDir     string
	JWTSecret      string

	DefaultCountryCode string

	// Anti-ban pacing
	DailySendLimit   int
	JitterEnabled    bool
	JitterMinMs      int
	JitterMaxMs      int
	TypingSimulation bool
	SendReadReceipts bool

	// Webhook fallback kalau instance tidak punya config sendiri
	WebhookURL    string
	WebhookSecret string

	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration

	EnableWebhook         bool
	EnableWebsocketEvents bool
}

func Load() *Config {
	return &Config{
		Port:           helper.GetEnv("PORT", "2121"),
		DatabaseURL:    helper.GetEnv("DATABASE_URL", ""),
		AppDatabaseURL: helper.GetEnv("APP_DATABASE_URL", ""),
		SessionDir:     helper.GetEnv("SESSION_DIR", "./sessions"),
		JWTSecret:      helper.GetEnv("JWT_SECRET", ""),

		DefaultCountryCode: helper.GetEnv("DEFAULT_COUNTRY_CODE", "62"),

		DailySendLimit:   helper.GetEnvAsInt("DAILY_SEND_LIMIT", 1000),
		JitterEnabled:    helper.GetEnvAsBool("JITTER_ENABLED", true),
		JitterMinMs:      helper.GetEnvAsInt("JITTER_MIN_MS", 1500),
		JitterMaxMs:      helper.GetEnvAsInt("JITTER_MAX_MS", 5000),
		TypingSimulation: helper.GetEnvAsBool("TYPING_SIMULATION", true),
		SendReadReceipts: helper.GetEnvAsBool("SEND_READ_RECEIPTS", false),

		WebhookURL:    helper.GetEnv("WEBHOOK_URL", ""),
		WebhookSecret: helper.GetEnv("WEBHOOK_SECRET", ""),

		ReconnectDelay:    time.Duration(helper.GetEnvAsInt("RECONNECT_DELAY_SECONDS", 5)) * time.Second,
		ReconnectMaxDelay: time.Duration(helper.GetEnvAsInt("RECONNECT_MAX_DELAY_SECONDS", 300)) * time.Second,

		EnableWebhook:         helper.GetEnvAsBool("ENABLE_WEBHOOK", true),
		EnableWebsocketEvents: helper.GetEnvAsBool("ENABLE_WEBSOCKET_EVENTS", true),
	}
}
