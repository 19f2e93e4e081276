package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"alfredoptarigan/cv-submission/internal/config"
	"alfredoptarigan/cv-submission/internal/handlers"
	applog "alfredoptarigan/cv-submission/internal/logger"
	"alfredoptarigan/cv-submission/internal/metrics"
	"alfredoptarigan/cv-submission/internal/repositories"
	"alfredoptarigan/cv-submission/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := applog.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	candidateRepo := repositories.NewCandidateRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	pdfParser := services.NewPDFParserService()

	ctx := context.Background()
	validationClient, err := services.NewValidationClient(ctx, cfg.Validator, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize validation client", zap.Error(err))
	}
	log.Info("✅ Validation client initialized",
		zap.String("backend", validationClient.Backend()),
		zap.Bool("rule_guard", cfg.Validator.RuleGuard),
	)

	submissionService := services.NewSubmissionService(
		storageService,
		pdfParser,
		validationClient,
		candidateRepo,
		appMetrics,
		cfg.Validator.Timeout,
		log,
	)
	log.Info("✅ Services initialized successfully")

	// Uploads a little over the limit reach the upload handler; larger bodies
	// are refused by fiber and mapped to the same error by the error handler.
	bodyLimit := int(2*cfg.Storage.MaxFileSize) + 1024*1024

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Submission API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Validator.Timeout + 30*time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.NewErrorHandler(cfg.Storage.MaxFileSize, appMetrics),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.RegisterRoutes(app, handlers.Routes{
		Upload:    handlers.NewUploadHandler(storageService, appMetrics, log),
		Submit:    handlers.NewSubmitHandler(submissionService, log),
		Candidate: handlers.NewCandidateHandler(candidateRepo),
		Gatherer:  registry,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
