package scheduler

import (
	"context"
	"time"

	"reportes_backend/platform/logger"

	"github.com/google/uuid"
)

// GeocodeRunner is the job body for reverse-geocode tasks.
type GeocodeRunner interface {
	Resolve(ctx context.Context, ubicacionID uuid.UUID, attempt int) error
}

// NotificationRunner is the job body for event notification tasks.
type NotificationRunner interface {
	Notify(ctx context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error
}

// Inline runs jobs synchronously in the enqueuing process. Used for tests and
// for deployments without Redis. Retry delays are skipped: a retried job runs
// immediately, which keeps end states identical to the deferred mode.
type Inline struct {
	geocode      GeocodeRunner
	notification NotificationRunner
	log          *logger.Logger
}

func NewInline(log *logger.Logger) *Inline {
	return &Inline{log: log}
}

// SetGeocodeRunner wires the ubicaciones resolver. Must be called before any
// enqueue; wiring is split to break the service/scheduler cycle.
func (i *Inline) SetGeocodeRunner(runner GeocodeRunner) {
	i.geocode = runner
}

// SetNotificationRunner wires the notification job body.
func (i *Inline) SetNotificationRunner(runner NotificationRunner) {
	i.notification = runner
}

func (i *Inline) EnqueueReverseGeocode(ctx context.Context, ubicacionID uuid.UUID, attempt int, _ time.Duration) error {
	if i.geocode == nil {
		i.log.Warn("inline scheduler has no geocode runner", "ubicacion_id", ubicacionID)
		return nil
	}
	if err := i.geocode.Resolve(ctx, ubicacionID, attempt); err != nil {
		i.log.Error("inline reverse geocode failed", "ubicacion_id", ubicacionID, "error", err)
	}
	return nil
}

func (i *Inline) EnqueueEventNotifications(ctx context.Context, eventoID uuid.UUID, reportID *uuid.UUID) error {
	if i.notification == nil {
		i.log.Warn("inline scheduler has no notification runner", "evento_id", eventoID)
		return nil
	}
	if err := i.notification.Notify(ctx, eventoID, reportID); err != nil {
		i.log.Error("inline notification dispatch failed", "evento_id", eventoID, "error", err)
	}
	return nil
}

// Compile-time check that Inline implements JobScheduler.
var _ JobScheduler = (*Inline)(nil)
