package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arzan03/DocBridge/internal/auth"
	"github.com/arzan03/DocBridge/internal/config"
	"github.com/arzan03/DocBridge/internal/handlers"
	"github.com/arzan03/DocBridge/internal/lock"
	"github.com/arzan03/DocBridge/internal/logging"
	"github.com/arzan03/DocBridge/internal/middleware"
	"github.com/arzan03/DocBridge/internal/ratelimit"
	"github.com/arzan03/DocBridge/internal/services"
	"github.com/arzan03/DocBridge/internal/session"
	"github.com/arzan03/DocBridge/internal/storage"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	cfg := config.Load()
	zlog := logging.New(cfg.Production())
	defer zlog.Sync()

	// Storage strategies in fallback order: remote first when enabled,
	// local disk always.
	local, err := storage.NewLocal(cfg.DataDir)
	if err != nil {
		zlog.Fatal("local storage init", zap.Error(err))
	}
	var strategies []storage.Strategy
	if cfg.RemoteEnabled {
		remote, err := storage.NewRemote(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			zlog.Warn("remote storage disabled: init failed", zap.Error(err))
		} else {
			strategies = append(strategies, remote)
		}
	}
	strategies = append(strategies, local)
	store := storage.NewAdapter(zlog, strategies...)

	sessions := session.NewStore(cfg.SessionCap, cfg.TokenTTL)
	defer sessions.Close()
	authMgr := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL, sessions)
	locks := lock.NewManager()

	limiter := ratelimit.New(cfg.RateWindow, map[ratelimit.Class]int{
		ratelimit.ClassProtocol: cfg.RateMaxProtocol,
		ratelimit.ClassCreate:   cfg.RateMaxCreate,
		ratelimit.ClassSession:  cfg.RateMaxSession,
	})
	defer limiter.Close()

	docs := services.NewDocumentService(authMgr, store, cfg.PublicBaseURL, cfg.EditorBaseURL)

	app := fiber.New(fiber.Config{BodyLimit: 64 * 1024 * 1024})
	app.Use(logger.New())
	app.Use(middleware.SecurityHeaders(cfg))
	app.Use(middleware.CORS(cfg))

	discovery := handlers.NewDiscoveryHandler(cfg.EditorBaseURL, zlog)
	app.Get("/hosting/discovery", discovery.Proxy)

	wopi := &handlers.WOPIHandler{
		Auth:          authMgr,
		Locks:         locks,
		Store:         store,
		Log:           zlog,
		PublicBaseURL: cfg.PublicBaseURL,
	}
	files := app.Group("/files", middleware.RateLimit(limiter, ratelimit.ClassProtocol))
	wopi.Register(files)

	api := handlers.APIHandler{Auth: authMgr, Docs: docs, Log: zlog}
	apiGroup := app.Group("/api")
	apiGroup.Post("/edit", middleware.RateLimit(limiter, ratelimit.ClassSession), api.Edit)
	apiGroup.Post("/create", middleware.RateLimit(limiter, ratelimit.ClassCreate), api.Create)
	apiGroup.Get("/recent", middleware.RateLimit(limiter, ratelimit.ClassSession), api.Recent)

	zlog.Info("listening",
		zap.String("port", cfg.Port),
		zap.Bool("remoteStorage", cfg.RemoteEnabled),
		zap.String("publicBaseUrl", cfg.PublicBaseURL))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
