package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reportes_backend/internal/adapters"
	"reportes_backend/internal/email"
	"reportes_backend/internal/empleados"
	"reportes_backend/internal/eventos"
	"reportes_backend/internal/geocode"
	"reportes_backend/internal/notification"
	"reportes_backend/internal/scheduler"
	tareasrepo "reportes_backend/internal/tareas/repository"
	"reportes_backend/internal/ubicaciones"
	"reportes_backend/internal/whatsapp"
	"reportes_backend/platform/config"
	"reportes_backend/platform/db"
	"reportes_backend/platform/events"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	// Job bodies re-enqueue through the same queue (geocode retry backoff),
	// so the worker holds a client alongside the consumer.
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job client", "error", err)
		panic("failed to initialize job client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sender := initEmailSender(cfg, log)
	waClient := whatsapp.NewClient(cfg, log)
	geocoder := geocode.NewClient(cfg.GetGeocodeBaseURL(), log)
	dispatcher := notification.New(sender, waClient, cfg, log)

	val := validator.New()

	// Job-body wiring (no HTTP handlers required).
	empleadosModule := empleados.NewModule(pool, val, log)
	directory := adapters.NewEmpleadoDirectoryAdapter(empleadosModule.Service())

	ubicacionesModule := ubicaciones.NewModule(pool, geocoder, client, eventBus, cfg, val, log)
	ubicacionesModule.RegisterEventHandlers(eventBus)

	taskRepo := tareasrepo.New(pool)
	eventosModule := eventos.NewModule(
		pool,
		client,
		eventBus,
		dispatcher,
		adapters.NewTaskReaderAdapter(taskRepo),
		directory,
		val,
		log,
	)
	eventosModule.Service().SetReportReader(adapters.NewReportReaderAdapter(taskRepo))
	eventosModule.RegisterEventHandlers(eventBus)

	worker, err := scheduler.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.SetGeocodeRunner(ubicacionesModule.Service())
	worker.SetNotificationRunner(eventosModule.Service())

	worker.Run(ctx)
	log.Info("worker stopped")
}

func initEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; notification mail will be dropped")
		return email.NoopSender{}
	}

	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
