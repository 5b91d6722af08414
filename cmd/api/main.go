package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/math-u-t/litedrive/docs"
	"github.com/math-u-t/litedrive/internal/auth"
	"github.com/math-u-t/litedrive/internal/config"
	"github.com/math-u-t/litedrive/internal/database"
	"github.com/math-u-t/litedrive/internal/database/migration"
	handlers "github.com/math-u-t/litedrive/internal/http/handler"
	"github.com/math-u-t/litedrive/internal/http/middleware"
	"github.com/math-u-t/litedrive/internal/logger"
	"github.com/math-u-t/litedrive/internal/metrics"
	appotel "github.com/math-u-t/litedrive/internal/otel"
	"github.com/math-u-t/litedrive/internal/repository"
	"github.com/math-u-t/litedrive/internal/repository/mongodb"
	"github.com/math-u-t/litedrive/internal/repository/postgres"
	"github.com/math-u-t/litedrive/internal/service"
	"github.com/math-u-t/litedrive/internal/storage"
)

// @title litedrive API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	repo, closeRepo, err := newFileRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize metadata store", zap.Error(err))
	}
	defer closeRepo()

	objStore, err := newStorage(cfg)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		log.Fatal("failed to register domain metrics", zap.Error(err))
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	var verifier *auth.Verifier
	if cfg.Auth.Required {
		verifier, err = auth.NewVerifier(ctx, cfg.Auth)
		if err != nil {
			log.Fatal("failed to initialize auth verifier", zap.Error(err))
		}
	}

	fileSvc := service.NewFileService(objStore, repo,
		service.WithLogger(log.Named("files")),
		service.WithMetrics(recorder),
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitBytes,
	})

	// Register global middleware
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log.Named("http")))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		Files:          fileSvc,
		Health:         repo,
		PublishableKey: cfg.Auth.PublishableKey,
		Verifier:       verifier,
		Gatherer:       reg,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server_shutdown_failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting",
		zap.String("addr", addr),
		zap.String("metadata_backend", cfg.MetadataBackend),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Bool("auth_required", cfg.Auth.Required),
	)

	if err := app.Listen(addr); err != nil {
		log.Error("failed to start server", zap.Error(err))
	}
}

// pingingRepository is a FileRepository that also reports store health.
type pingingRepository interface {
	repository.FileRepository
	handlers.Pinger
}

func newFileRepository(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (pingingRepository, func(), error) {
	switch cfg.MetadataBackend {
	case config.MetadataPostgres:
		db, err := database.NewPostgres(cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewFilePostgres(db), func() { db.Close() }, nil

	default:
		opts, err := database.MongoClientOptions(cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}

		var (
			dialer  mongodb.Dialer
			cleanup = func() {}
		)
		if cfg.Mongo.ConnectPerRequest {
			dialer = mongodb.NewPerCallDialer(opts, cfg.Mongo.Database, cfg.Mongo.Collection, log)
		} else {
			cli, err := database.NewMongoClient(ctx, cfg.Mongo)
			if err != nil {
				return nil, nil, err
			}
			dialer = mongodb.NewSharedDialer(cli, cfg.Mongo.Database, cfg.Mongo.Collection)
			cleanup = func() {
				if err := cli.Disconnect(context.Background()); err != nil {
					log.Warn("mongo_disconnect_failed", zap.Error(err))
				}
			}
		}

		repo := mongodb.NewFileMongo(dialer)
		if err := repo.EnsureIndexes(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info("mongo_ready",
			zap.String("database", cfg.Mongo.Database),
			zap.Bool("connect_per_request", cfg.Mongo.ConnectPerRequest),
		)
		return repo, cleanup, nil
	}
}

func newStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		return storage.NewMinIO(cfg.MinIO)
	case config.StorageMemory:
		return storage.NewMemory("http://" + cfg.AppHost), nil
	default:
		return storage.NewREST(cfg.ObjectStore)
	}
}
