package scheduler

import (
	"context"
	"fmt"

	"reportes_backend/platform/config"
	"reportes_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes scheduled jobs in the deferred out-of-process mode.
// Business retry logic lives in the job bodies (the services); asynq's own
// retry only covers infrastructure failures such as the database being
// unreachable mid-job.
type Worker struct {
	server       *asynq.Server
	mux          *asynq.ServeMux
	geocode      GeocodeRunner
	notification NotificationRunner
	log          *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		log:    log,
	}

	mux.HandleFunc(TaskReverseGeocode, w.handleReverseGeocode)
	mux.HandleFunc(TaskEventNotifications, w.handleEventNotifications)

	return w, nil
}

// SetGeocodeRunner wires the ubicaciones resolver job body.
func (w *Worker) SetGeocodeRunner(runner GeocodeRunner) {
	w.geocode = runner
}

// SetNotificationRunner wires the notification job body.
func (w *Worker) SetNotificationRunner(runner NotificationRunner) {
	w.notification = runner
}

func (w *Worker) handleReverseGeocode(ctx context.Context, task *asynq.Task) error {
	if w.geocode == nil {
		return nil
	}

	payload, err := ParseReverseGeocodePayload(task)
	if err != nil {
		return err
	}

	ubicacionID, err := uuid.Parse(payload.UbicacionID)
	if err != nil {
		return err
	}

	return w.geocode.Resolve(ctx, ubicacionID, payload.Attempt)
}

func (w *Worker) handleEventNotifications(ctx context.Context, task *asynq.Task) error {
	if w.notification == nil {
		return nil
	}

	payload, err := ParseEventNotificationsPayload(task)
	if err != nil {
		return err
	}

	eventoID, err := uuid.Parse(payload.EventoID)
	if err != nil {
		return err
	}

	var reportID *uuid.UUID
	if payload.ReportID != nil {
		id, err := uuid.Parse(*payload.ReportID)
		if err != nil {
			return err
		}
		reportID = &id
	}

	return w.notification.Notify(ctx, eventoID, reportID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
