package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"docverify/internal/config"
	"docverify/internal/database"
	"docverify/internal/database/migration"
	"docverify/internal/doctype"
	handlers "docverify/internal/http/handler"
	"docverify/internal/http/middleware"
	"docverify/internal/oracle"
	"docverify/internal/otel"
	"docverify/internal/pipeline"
	"docverify/internal/queue"
	"docverify/internal/repository/postgres"
	"docverify/internal/storage"
	"docverify/internal/tamper"
	"docverify/internal/validate"
	"docverify/internal/worker"
)

// The worker daemon consumes upload notifications and runs each document
// through the verification pipeline. It serves an ops HTTP app for probes and
// prometheus scraping; it has no domain-facing HTTP surface.
func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	baselines, err := tamper.LoadBaselines(cfg.Pipeline.BaselinePath)
	if err != nil {
		log.Fatalf("failed to load tamper baselines: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	oracleClient := oracle.NewClient(cfg.Oracle, logger)
	pipe := pipeline.New(
		cfg.Pipeline,
		tamper.NewGate(baselines, logger),
		oracleClient,
		doctype.NewResolver(oracleClient),
		validate.NewValidator(),
		objStore,
		postgres.NewRecordPostgres(db),
		metrics,
		logger,
	)

	consumer, err := queue.NewKafkaConsumer(cfg.Kafka, logger)
	if err != nil {
		log.Fatalf("failed to create kafka consumer: %v", err)
	}
	defer consumer.Close()

	// Ops HTTP app: probes and metrics only.
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	handlers.RegisterRoutes(app, db, reg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("failed to start ops server: %v", err)
		}
	}()
	defer app.Shutdown()

	logger.Info("worker started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
	if err := worker.New(consumer, pipe, logger).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("worker loop failed: %v", err)
	}
	logger.Info("worker stopped")
}
