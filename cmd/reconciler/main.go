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
	"docverify/internal/consensus"
	"docverify/internal/database"
	"docverify/internal/database/migration"
	handlers "docverify/internal/http/handler"
	"docverify/internal/http/middleware"
	"docverify/internal/oracle"
	"docverify/internal/otel"
	"docverify/internal/reconcile"
	"docverify/internal/repository/postgres"
	"docverify/internal/storage"
)

// The reconciler daemon polls the system-of-record for cases whose documents
// have all finished the pipeline, runs the consensus engine over them, and
// writes the case report.
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

	oracleClient := oracle.NewClient(cfg.Oracle, logger)
	engine := consensus.NewEngine(oracleClient, oracleClient, cfg.Pipeline.ScoreThreshold, logger)
	watcher := reconcile.NewWatcher(cfg.Pipeline, postgres.NewRecordPostgres(db), objStore,
		oracleClient, engine, logger)

	reg := prometheus.NewRegistry()
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

	logger.Info("reconciler started", "interval", cfg.Pipeline.ReconcileInterval.String())
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("reconcile loop failed: %v", err)
	}
	logger.Info("reconciler stopped")
}
