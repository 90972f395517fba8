package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"mediadocs/docs"
	"mediadocs/internal/config"
	"mediadocs/internal/database"
	"mediadocs/internal/database/migration"
	handlers "mediadocs/internal/http/handler"
	"mediadocs/internal/http/middleware"
	"mediadocs/internal/logging"
	"mediadocs/internal/media"
	"mediadocs/internal/otel"
	"mediadocs/internal/promote"
	"mediadocs/internal/quota"
	"mediadocs/internal/repository/postgres"
	"mediadocs/internal/service"
	"mediadocs/internal/storage"
)

// maxFilesPerUpload sizes the request body limit together with MAX_UPLOAD_BYTES.
const (
	maxFilesPerUpload = 10
	formOverhead      = 1 << 20
)

// @title Media Documents API
// @version 1.0
// @description Upload, compress, merge and promote owner documents.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL connection pool via database/sql
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			return err
		}
	}

	objStore, err := newStorage(cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp upload dir: %w", err)
	}
	namer := promote.NewNamer()
	promoter, err := promote.New(promote.Config{
		TempDir:      cfg.Storage.TempDir,
		PublicPrefix: cfg.Storage.TempPublicPrefix,
	}, objStore, namer)
	if err != nil {
		return fmt.Errorf("initialize promoter: %w", err)
	}

	mediaMetrics, err := media.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register media metrics: %w", err)
	}
	transformer := media.New(media.Config{
		GhostscriptPath: cfg.Media.GhostscriptPath,
		Timeout:         cfg.Media.OptimizerTimeout,
		TempDir:         cfg.Media.ScratchDir,
	}, logger, mediaMetrics)

	locker, err := newLocker(cfg.Quota)
	if err != nil {
		return fmt.Errorf("initialize quota lock: %w", err)
	}
	logger.Info("quota_configured",
		"default_limit_bytes", cfg.Quota.DefaultLimitBytes,
		"lock", cfg.Quota.Lock,
	)

	// Repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	quotaRepo := postgres.NewQuotaPostgres(db)
	docSvc := service.NewDocumentService(service.Deps{
		Store:        objStore,
		Repo:         docRepo,
		Media:        transformer,
		Promoter:     promoter,
		Quota:        quota.NewAccountant(quotaRepo, cfg.Quota.DefaultLimitBytes, locker),
		Namer:        namer,
		Logger:       logger,
		MaxFileBytes: cfg.Media.MaxUploadBytes,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit(cfg.Media.MaxUploadBytes),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, docSvc, prometheus.DefaultGatherer)

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

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_listening", "addr", addr, "storage_driver", cfg.Storage.Driver)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown", "reason", "signal")
	// in-flight uploads may be waiting on the PDF optimizer
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Media.OptimizerTimeout+10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

// bodyLimit sizes Fiber's request cap for a full multi-file upload plus form
// overhead. A non-positive per-file limit lifts the cap as well.
func bodyLimit(maxUploadBytes int64) int {
	if maxUploadBytes <= 0 || maxUploadBytes > (math.MaxInt-formOverhead)/maxFilesPerUpload {
		return math.MaxInt
	}
	return int(maxUploadBytes)*maxFilesPerUpload + formOverhead
}

func newStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "", "local":
		return storage.NewLocal(cfg.Storage.Dir)
	case "minio":
		return storage.NewMinIO(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newLocker(cfg config.QuotaConfig) (quota.Locker, error) {
	switch cfg.Lock {
	case "", "none":
		return quota.NoopLocker{}, nil
	case "file":
		return quota.NewFileLocker(cfg.LockDir)
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return quota.NewRedisLocker(redis.NewClient(opt), cfg.LockTTL), nil
	default:
		return nil, fmt.Errorf("unknown quota lock %q", cfg.Lock)
	}
}
