package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/PlayFutnaTela/gerezim-sub000/internal/concierge"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/config"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/database"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/database/migration"
	handlers "github.com/PlayFutnaTela/gerezim-sub000/internal/http/handler"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/http/middleware"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/otel"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/repository/postgres"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/service"
	"github.com/PlayFutnaTela/gerezim-sub000/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	// PostgreSQL connection with pooling via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Fatal("failed to initialize object storage", zap.Error(err))
	}

	contactRepo := postgres.NewContactPostgres(db)
	productRepo := postgres.NewProductPostgres(db)
	nodeRepo := postgres.NewNodePostgres(db)
	opportunityRepo := postgres.NewOpportunityPostgres(db)

	svcs := handlers.Services{
		Contacts:  service.NewContactService(contactRepo, logger),
		Products:  service.NewProductService(productRepo, objStore, logger),
		Nodes:     service.NewNodeService(nodeRepo, objStore, logger),
		Board:     service.NewPipelineBoard(opportunityRepo, contactRepo, productRepo, logger),
		Dashboard: service.NewDashboardService(opportunityRepo, productRepo, logger),
		Concierge: concierge.NewClient(nil, cfg.Concierge, logger),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Request IDs first so the logger can pick them up.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(otelfiber.Middleware())

	registry := prometheus.NewRegistry()
	promMw, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svcs)

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
