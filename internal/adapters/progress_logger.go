package adapters

import (
	"context"

	eventosvc "reportes_backend/internal/eventos/service"
	tareasvc "reportes_backend/internal/tareas/service"
)

// ProgressLoggerAdapter lets the tareas report-close path log a progress
// evento. Implements tareas/service.ProgressLogger.
type ProgressLoggerAdapter struct {
	svc *eventosvc.Service
}

func NewProgressLoggerAdapter(svc *eventosvc.Service) *ProgressLoggerAdapter {
	return &ProgressLoggerAdapter{svc: svc}
}

var _ tareasvc.ProgressLogger = (*ProgressLoggerAdapter)(nil)

func (a *ProgressLoggerAdapter) LogReportProgress(ctx context.Context, entry tareasvc.ProgressEntry) error {
	return a.svc.LogReportProgress(ctx, entry.TaskID, entry.ReportID, entry.Description, entry.ActorUserName)
}
