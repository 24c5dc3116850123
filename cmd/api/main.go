package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reportes_backend/internal/adapters"
	"reportes_backend/internal/email"
	"reportes_backend/internal/empleados"
	"reportes_backend/internal/eventos"
	"reportes_backend/internal/geocode"
	apphttp "reportes_backend/internal/http"
	"reportes_backend/internal/http/router"
	"reportes_backend/internal/notification"
	"reportes_backend/internal/scheduler"
	"reportes_backend/internal/tareas"
	"reportes_backend/internal/ubicaciones"
	"reportes_backend/internal/whatsapp"
	"reportes_backend/migrations"
	"reportes_backend/platform/config"
	"reportes_backend/platform/db"
	"reportes_backend/platform/events"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	jobs, inline, closeJobs := initJobScheduler(cfg, log)
	if closeJobs != nil {
		defer closeJobs()
	}

	sender := initEmailSender(cfg, log)
	waClient := whatsapp.NewClient(cfg, log)
	geocoder := geocode.NewClient(cfg.GetGeocodeBaseURL(), log)
	dispatcher := notification.New(sender, waClient, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	empleadosModule := empleados.NewModule(pool, val, log)
	directory := adapters.NewEmpleadoDirectoryAdapter(empleadosModule.Service())

	ubicacionesModule := ubicaciones.NewModule(pool, geocoder, jobs, eventBus, cfg, val, log)

	tareasModule := tareas.NewModule(
		pool,
		adapters.NewUbicacionCreatorAdapter(ubicacionesModule.Service()),
		directory,
		val,
		log,
	)

	eventosModule := eventos.NewModule(
		pool,
		jobs,
		eventBus,
		dispatcher,
		adapters.NewTaskReaderAdapter(tareasModule.Repository()),
		directory,
		val,
		log,
	)

	// Late wiring breaks the tareas/eventos dependency cycle: report closes
	// produce eventos, and evento notifications read report content back.
	tareasModule.Service().SetProgressLogger(adapters.NewProgressLoggerAdapter(eventosModule.Service()))
	eventosModule.Service().SetReportReader(adapters.NewReportReaderAdapter(tareasModule.Repository()))

	if inline != nil {
		inline.SetGeocodeRunner(ubicacionesModule.Service())
		inline.SetNotificationRunner(eventosModule.Service())
	}

	ubicacionesModule.RegisterEventHandlers(eventBus)
	eventosModule.RegisterEventHandlers(eventBus)

	// ========================================================================
	// HTTP Server
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			empleadosModule,
			ubicacionesModule,
			tareasModule,
			eventosModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// initJobScheduler picks the job transport. With JOBS_INLINE or no Redis URL
// jobs run synchronously in-process; otherwise they are deferred to the
// worker binary through asynq.
func initJobScheduler(cfg *config.Config, log *logger.Logger) (scheduler.JobScheduler, *scheduler.Inline, func()) {
	if cfg.GetJobsInline() || cfg.GetRedisURL() == "" {
		if cfg.GetRedisURL() == "" && !cfg.GetJobsInline() {
			log.Warn("REDIS_URL not set; background jobs will run inline")
		}
		inline := scheduler.NewInline(log)
		return inline, inline, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job scheduler", "error", err)
		panic("failed to initialize job scheduler: " + err.Error())
	}
	log.Info("job scheduler initialized", "queue", cfg.GetAsynqQueueName())

	return client, nil, func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close job scheduler", "error", err)
		}
	}
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

// withRetry runs fn up to attempts times with quadratic backoff. Used for
// startup dependencies that may come up after the app in containerized
// deployments.
func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
