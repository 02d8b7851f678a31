package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/applytrack/internal/config"
	"github.com/kursadbilgin/applytrack/internal/handler"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/infra/postgresql"
	"github.com/kursadbilgin/applytrack/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/applytrack/internal/infra/redis"
	"github.com/kursadbilgin/applytrack/internal/mailbox"
	"github.com/kursadbilgin/applytrack/internal/observability"
	"github.com/kursadbilgin/applytrack/internal/provider"
	"github.com/kursadbilgin/applytrack/internal/queue"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"github.com/kursadbilgin/applytrack/internal/scanner"
	"github.com/kursadbilgin/applytrack/internal/service"
	"github.com/kursadbilgin/applytrack/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 10 * time.Second
	consumerPrefetch = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("applytrack stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}
	defer postgresql.Close(db) //nolint:errcheck

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.MailboxRateLimitPerSec)
	if err != nil {
		return err
	}
	scanLock, err := infraredis.NewScanLock(rdb)
	if err != nil {
		return err
	}

	verifier, err := identity.NewSessionVerifier(cfg.AuthJWTSecret)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	companyRepo := repository.NewGormCompanyRepo(db)
	notificationRepo := repository.NewGormNotificationRepo(db)

	mailScanner, err := scanner.New(
		mailbox.NewGmailClient(cfg.MailboxBaseURL, cfg.MailboxTimeout),
		notificationRepo,
		limiter,
		cfg.ScanMaxResults,
		logger.Named("scanner"),
		metrics,
	)
	if err != nil {
		return err
	}

	companies, err := service.NewCompanyService(companyRepo, notificationRepo, logger)
	if err != nil {
		return err
	}
	notifications, err := service.NewNotificationService(notificationRepo, logger)
	if err != nil {
		return err
	}
	scans, err := service.NewScanService(companyRepo, notificationRepo, mailScanner, scanLock, cfg.ScanLockTTL, logger)
	if err != nil {
		return err
	}
	scans.SetMetrics(metrics)
	scans.SetHistory(repository.NewGormScanRunRepo(db))

	checks := map[string]handler.Check{
		"postgres": func(ctx context.Context) error { return postgresql.Ping(ctx, db) },
		"redis":    func(ctx context.Context) error { return infraredis.Ping(ctx, rdb) },
	}

	g, groupCtx := errgroup.WithContext(ctx)

	if cfg.AlertRelayEnabled() {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("rabbitmq initialization failed: %w", err)
		}
		defer mq.Close() //nolint:errcheck

		publisher := queue.NewRabbitMQPublisher(mq)
		defer publisher.Close() //nolint:errcheck
		scans.SetPublisher(publisher)

		webhook, err := provider.NewWebhookProvider(cfg.AlertWebhookURL)
		if err != nil {
			return err
		}
		consumer := queue.NewRabbitMQConsumer(mq, consumerPrefetch, logger.Named("consumer"))
		defer consumer.Close() //nolint:errcheck

		worker, err := service.NewWorkerService(consumer, webhook, limiter, cfg.WorkerConcurrency, logger.Named("relay"))
		if err != nil {
			return err
		}
		worker.SetMetrics(metrics)

		checks["rabbitmq"] = func(context.Context) error {
			if !mq.Connected() {
				return errors.New("rabbitmq connection closed")
			}
			return nil
		}

		g.Go(func() error { return worker.Start(groupCtx) })
		logger.Info("alert relay enabled", zap.Int("concurrency", cfg.WorkerConcurrency))
	}

	app := fiber.New(fiber.Config{
		AppName:               "applytrack",
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	})
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, checks)
	if err := handler.RegisterAPIRoutes(app, verifier, handler.Services{
		Companies:     companies,
		Notifications: notifications,
		Scans:         scans,
	}); err != nil {
		return err
	}

	g.Go(func() error {
		logger.Info("applytrack api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}
