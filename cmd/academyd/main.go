// Package main is the entry point for the IMPTECH academy ledger daemon.
//
// The daemon owns the billing ledger: student registration, payment
// recording, derived balances, reports, receipts and admission letters,
// in-app notifications, and the daily payment reminder sweep.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imptech/academy-ledger/config"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/internal/infrastructure/document"
	"github.com/imptech/academy-ledger/internal/infrastructure/messaging"
	"github.com/imptech/academy-ledger/internal/infrastructure/persistence/postgres"
	"github.com/imptech/academy-ledger/internal/infrastructure/persistence/redis"
	"github.com/imptech/academy-ledger/internal/infrastructure/scheduler"
	"github.com/imptech/academy-ledger/internal/infrastructure/scheduler/jobs"
	"github.com/imptech/academy-ledger/internal/infrastructure/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting academy ledger",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		conn.Close()
	}()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	health, err := conn.Health(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	log.Info("database connection established",
		"ping_latency", health.PingLatency.String(),
		"max_conns", health.MaxConns,
		"database_size_bytes", health.DatabaseSize,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	migrator := postgres.NewMigrator(conn)

	// `academyd migrate-rollback` undoes the last migration and exits. Kept
	// as an operator escape hatch for a bad schema change.
	if len(os.Args) > 1 && os.Args[1] == "migrate-rollback" {
		log.Info("rolling back last migration...")
		if err := migrator.Rollback(ctx); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		log.Info("rollback complete")
		return nil
	}

	log.Info("checking database migrations...")
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	applied := 0
	for _, m := range status {
		if m.IsApplied {
			applied++
		}
	}
	log.Info("database schema is up to date",
		"migrations_applied", applied,
		"migrations_known", len(status),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional, reports degrade to direct reads without it)
	// ─────────────────────────────────────────────────────────────────────────
	var reportCache *redis.ReportCache

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureReportsCache) {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, report caching disabled", "error", err)
		} else {
			defer cache.Close()
			reportCache = redis.NewReportCache(cache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. DOCUMENT EMITTERS
	// ─────────────────────────────────────────────────────────────────────────
	docCfg := document.DefaultConfig()
	docCfg.ReceiptsDir = cfg.Documents.ReceiptsDir
	docCfg.LettersDir = cfg.Documents.LettersDir
	docCfg.ExportsDir = cfg.Documents.ExportsDir
	docCfg.AcademyName = cfg.Documents.AcademyName
	docCfg.AcademyAddress = cfg.Documents.AcademyAddress
	docCfg.AcademyPhone = cfg.Documents.AcademyPhone

	pdfEmitter, err := document.NewPDFEmitter(docCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize PDF emitter: %w", err)
	}

	excelExporter, err := document.NewExcelExporter(docCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize Excel exporter: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing services...")
	store := postgres.NewStore(conn)
	reportRepo := postgres.NewReportRepository(conn)
	notificationRepo := postgres.NewNotificationRepository(conn)

	ledgerCfg := service.LedgerServiceConfig{
		Store:  store,
		Events: eventBus,
		Logger: log,
	}
	if cfg.Features.IsEnabled(config.FeatureDocumentsReceipts) {
		ledgerCfg.Receipts = pdfEmitter
	}
	if cfg.Features.IsEnabled(config.FeatureDocumentsLetters) {
		ledgerCfg.Letters = pdfEmitter
	}
	if reportCache != nil {
		ledgerCfg.Cache = reportCache
	}

	ledgerSvc := service.NewLedgerService(ledgerCfg)
	reportSvc := service.NewReportService(reportRepo, reportCache, log)
	notificationSvc := service.NewNotificationService(notificationRepo, store, eventBus, log)
	exportSvc := service.NewExportService(store, excelExporter, log)

	// Record a front-office notice for every registration.
	if cfg.Features.IsEnabled(config.FeatureNotifyRegistrations) {
		err := eventBus.Subscribe(shared.EventStudentRegistered, func(ctx context.Context, e shared.Event) error {
			st, err := ledgerSvc.GetStudent(ctx, student.RegNumber(e.AggregateID()))
			if err != nil {
				return err
			}
			_, err = notificationSvc.NotifyRegistration(ctx, st)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe registration handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("initializing scheduler...")
		schedCfg := scheduler.DefaultConfig()
		schedCfg.Logger = log
		schedCfg.Timezone = cfg.App.Location
		sched = scheduler.New(schedCfg)

		if cfg.Features.IsEnabled(config.FeatureNotifyPaymentReminders) {
			remindersCfg := jobs.DefaultPaymentRemindersConfig()
			remindersCfg.Timeout = cfg.Scheduler.JobTimeout

			var locker jobs.JobLocker
			if reportCache != nil {
				locker = reportCache
			}

			remindersJob := jobs.NewPaymentRemindersJob(reportSvc, notificationSvc, locker, log, remindersCfg)
			remindersSchedule := scheduler.NewDailySchedule(cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderMinute)
			if err := sched.Register(remindersJob, remindersSchedule); err != nil {
				return fmt.Errorf("failed to register reminders job: %w", err)
			}
		}

		pruneJob := jobs.NewPruneNotificationsJob(notificationSvc, log, cfg.Scheduler.NotificationRetention)
		if err := sched.Register(pruneJob, scheduler.NewDailySchedule(2, 0)); err != nil {
			return fmt.Errorf("failed to register prune job: %w", err)
		}

		// Nightly offline copy of the books after the front office closes.
		if cfg.Features.IsEnabled(config.FeatureDocumentsExports) {
			exportJob := jobs.NewNightlyExportJob(exportSvc, log, cfg.Scheduler.JobTimeout)
			if err := sched.Register(exportJob, scheduler.NewDailySchedule(23, 30)); err != nil {
				return fmt.Errorf("failed to register export job: %w", err)
			}
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("academy ledger is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	return nil
}

// setupLogger configures structured logging from the observability config.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
