package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"gowa-relay/config"
	"gowa-relay/database"
	"gowa-relay/internal/credstore"
	"gowa-relay/internal/handler"
	"gowa-relay/internal/helper"
	customMiddleware "gowa-relay/internal/middleware"
	"gowa-relay/internal/model"
	"gowa-relay/internal/service"
	"gowa-relay/internal/waclient"
	"gowa-relay/internal/ws"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

func main() {

	// Load .env (abaikan error kalau file tidak ada, misal di production)
	_ = godotenv.Load()

	cfg := config.Load()

	//database whatsmeow
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	database.InitWhatsmeow(cfg.DatabaseURL)

	//database custom
	if cfg.AppDatabaseURL == "" {
		log.Fatal("APP_DATABASE_URL is not set")
	}
	database.InitAppDB(cfg.AppDatabaseURL)
	database.EnsureSchema()

	log.Printf("feature flags -> webhook: %v, websocket_events: %v, jitter: %v, typing_simulation: %v",
		cfg.EnableWebhook, cfg.EnableWebsocketEvents, cfg.JitterEnabled, cfg.TypingSimulation)

	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET is not set")
	}
	service.InitAuthConfig(cfg.JWTSecret)

	// **************************
	// main proses.
	//***************************

	creds := credstore.New(cfg.SessionDir)
	factory := waclient.NewMeowFactory(database.Container)
	instances := &model.InstanceDB{DB: database.AppDB}
	notifier := service.NewNotifier(cfg, instances)

	manager := service.NewManager(cfg, factory, creds, instances, notifier)
	pacer := service.NewPacer(cfg)
	dispatcher := service.NewDispatcher(cfg, manager, pacer)

	// Inisialisasi WebSocket Hub
	var hub *ws.Hub
	if cfg.EnableWebsocketEvents {
		hub = ws.NewHub()
		go hub.Run()
		manager.Realtime = hub
	}

	// Restore session yang sudah pernah pairing
	log.Println("Restoring saved sessions...")
	if err := manager.LoadSaved(); err != nil {
		log.Printf("Warning: failed to restore sessions: %v", err)
	}

	h := &handler.Handler{
		Cfg:        cfg,
		Manager:    manager,
		Dispatcher: dispatcher,
		Instances:  instances,
		Hub:        hub,
		StartTime:  time.Now(),
	}

	// Setup Echo
	e := echo.New()
	e.Use(middleware.Recover())

	//env allow ip
	originsEnv := helper.GetEnv("CORS_ALLOW_ORIGINS", "")
	if originsEnv == "" {
		log.Println("CORS_ALLOW_ORIGINS is not set")
	}
	allowOrigins := strings.Split(originsEnv, ",")
	for i, o := range allowOrigins {
		allowOrigins[i] = strings.TrimSpace(o)
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.PUT,
			echo.PATCH,
			echo.DELETE,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderXRequestedWith,
			echo.HeaderAuthorization,
			"X-Session-ID",
		},
		AllowCredentials: true,
	}))
	e.OPTIONS("/*", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Rate limiter configuration from env
	rateLimit := helper.GetEnvAsInt("RATE_LIMIT_PER_SECOND", 10)
	rateBurst := helper.GetEnvAsInt("RATE_LIMIT_BURST", 10)
	rateWindow := helper.GetEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 3)

	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(rateLimit),
				Burst:     rateBurst,
				ExpiresIn: time.Duration(rateWindow) * time.Minute,
			},
		),
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "Internal Server Error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprintf("%v", he.Message)
		}
		// Custom message untuk error tertentu
		switch code {
		case http.StatusMethodNotAllowed:
			message = "Method not allowed for this endpoint"
		case http.StatusNotFound:
			message = "Endpoint not found"
		}

		c.JSON(code, map[string]interface{}{
			"success": false,
			"error": map[string]string{
				"message": message,
				"code":    http.StatusText(code),
			},
		})
	}

	// =====================================================
	// PUBLIC ROUTES (No authentication required)
	// =====================================================
	e.GET("/health", h.Health)
	e.GET("/ws", h.WebSocket) //listen socket gorilla

	// Semua route gateway lain butuh bearer token
	api := e.Group("", customMiddleware.TokenAuthMiddleware())

	api.GET("/auth/qr", h.GetQR)
	api.GET("/auth/status", h.GetStatus)
	api.POST("/auth/logout", h.Logout)

	api.POST("/messages/send", h.SendMessage)
	api.POST("/messages/bulk", h.SendBulk)
	api.POST("/messages/media", h.SendMedia)

	api.GET("/contacts/check/:phoneNumber", h.CheckNumber)

	api.POST("/webhook/config", h.SetWebhookConfig)

	// log info untuk cek config
	log.Printf("Server starting on port %s", cfg.Port)

	// bind ke semua interface, bukan hanya 127.0.0.1
	log.Fatal(e.Start(":" + cfg.Port))
}
