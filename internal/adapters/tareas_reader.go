package adapters

import (
	"context"

	"github.com/google/uuid"

	eventosvc "reportes_backend/internal/eventos/service"
	tareasrepo "reportes_backend/internal/tareas/repository"
)

// TaskReaderAdapter gives the eventos orchestrator read access to tasks.
// Implements eventos/service.TaskReader.
type TaskReaderAdapter struct {
	repo tareasrepo.Repository
}

func NewTaskReaderAdapter(repo tareasrepo.Repository) *TaskReaderAdapter {
	return &TaskReaderAdapter{repo: repo}
}

var _ eventosvc.TaskReader = (*TaskReaderAdapter)(nil)

func (a *TaskReaderAdapter) GetTaskInfo(ctx context.Context, id uuid.UUID) (eventosvc.TaskInfo, error) {
	t, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return eventosvc.TaskInfo{}, err
	}
	return eventosvc.TaskInfo{ID: t.ID, Titulo: t.Title}, nil
}

// ReportReaderAdapter loads report content for notifications. Implements
// eventos/service.ReportReader.
type ReportReaderAdapter struct {
	repo tareasrepo.Repository
}

func NewReportReaderAdapter(repo tareasrepo.Repository) *ReportReaderAdapter {
	return &ReportReaderAdapter{repo: repo}
}

var _ eventosvc.ReportReader = (*ReportReaderAdapter)(nil)

func (a *ReportReaderAdapter) GetReportContent(ctx context.Context, id uuid.UUID) (string, bool) {
	rep, err := a.repo.GetReport(ctx, id)
	if err != nil {
		return "", false
	}
	if rep.Title == "" {
		return rep.Description, true
	}
	return rep.Title + "\n\n" + rep.Description, true
}
