package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/tareas/repository"
	"reportes_backend/internal/tareas/transport"
	"reportes_backend/platform/apperr"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
)

// UbicacionCreator creates a location inline with a task. The returned ID
// references a row in the processing state whose resolution is scheduled by
// the owning module.
type UbicacionCreator interface {
	CreateProcessing(ctx context.Context, nombre string, lat, lon *float64) (uuid.UUID, error)
}

// ActorResolver maps the acting username to an empleado ID, nil when the
// user has no empleado record. Attribution is best effort.
type ActorResolver interface {
	ResolveActorID(ctx context.Context, userName string) *uuid.UUID
}

// ProgressEntry is what the report-close path hands to the orchestrator.
type ProgressEntry struct {
	TaskID        uuid.UUID
	ReportID      uuid.UUID
	Title         string
	Description   string
	ActorUserName string
}

// ProgressLogger records a progress evento for a closed report.
type ProgressLogger interface {
	LogReportProgress(ctx context.Context, entry ProgressEntry) error
}

// Transactor runs a function inside a database transaction with
// post-commit hook support.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides business logic for tasks and their closing reports.
type Service struct {
	repo      repository.Repository
	tx        Transactor
	ubicacion UbicacionCreator
	actors    ActorResolver
	progress  ProgressLogger
	log       *logger.Logger
}

// New creates a new tareas service. The progress logger is attached later
// via SetProgressLogger because the orchestrator module is wired after this
// one.
func New(repo repository.Repository, tx Transactor, ubicacion UbicacionCreator, actors ActorResolver, log *logger.Logger) *Service {
	return &Service{repo: repo, tx: tx, ubicacion: ubicacion, actors: actors, log: log}
}

// SetProgressLogger attaches the orchestrator port used by the report-close
// path.
func (s *Service) SetProgressLogger(p ProgressLogger) {
	s.progress = p
}

// Create inserts a task referencing an existing ubicacion or creating one
// inline. actorUserName attributes the task when it resolves to an empleado.
func (s *Service) Create(ctx context.Context, req transport.CreateTaskRequest, actorUserName string) (transport.TaskResponse, error) {
	if (req.UbicacionID == nil) == (req.Ubicacion == nil) {
		return transport.TaskResponse{}, apperr.Validation("exactly one of ubicacionId and ubicacion is required")
	}

	var created repository.Task
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		ubicacionID := uuid.Nil
		if req.UbicacionID != nil {
			ubicacionID = *req.UbicacionID
		} else {
			id, err := s.ubicacion.CreateProcessing(ctx, req.Ubicacion.Nombre, req.Ubicacion.Lat, req.Ubicacion.Lon)
			if err != nil {
				return err
			}
			ubicacionID = id
		}

		t, err := s.repo.CreateTask(ctx, repository.CreateTaskParams{
			Title:        req.Title,
			Description:  req.Description,
			Priority:     req.Priority,
			Campus:       req.Campus,
			UbicacionID:  ubicacionID,
			ReportadoPor: s.resolveActor(ctx, actorUserName),
		})
		if err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(created), nil
}

// Get retrieves a task by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.TaskResponse, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(t), nil
}

// List retrieves tasks, optionally filtered by completion.
func (s *Service) List(ctx context.Context, done *bool) (transport.TaskListResponse, error) {
	items, err := s.repo.ListTasks(ctx, repository.ListFilter{Done: done})
	if err != nil {
		return transport.TaskListResponse{}, err
	}

	resp := transport.TaskListResponse{
		Items: make([]transport.TaskResponse, 0, len(items)),
		Total: len(items),
	}
	for _, t := range items {
		resp.Items = append(resp.Items, toTaskResponse(t))
	}
	return resp, nil
}

// Update applies a partial update. Setting done stamps or clears the
// resolution fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateTaskRequest, actorUserName string) (transport.TaskResponse, error) {
	params := repository.UpdateTaskParams{Priority: req.Priority, Done: req.Done}
	if req.Done != nil && *req.Done {
		now := time.Now()
		params.ResolvedAt = &now
		params.ResueltoPor = s.resolveActor(ctx, actorUserName)
	}

	t, err := s.repo.UpdateTask(ctx, id, params)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(t), nil
}

// Delete removes a task and its reports.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTask(ctx, id)
}

// CreateReport closes a task: it persists the report, marks the task done
// with a resolution stamp, and logs a progress evento through the
// orchestrator once the close has committed. Orchestrator failures are
// logged and swallowed; the close itself stands.
func (s *Service) CreateReport(ctx context.Context, taskID uuid.UUID, req transport.CreateReportRequest, actorUserName string) (transport.ReportResponse, error) {
	var created repository.Report

	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		task, err := s.repo.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Done {
			return apperr.Conflict("task is already resolved")
		}

		now := time.Now()
		rep, err := s.repo.CreateReport(ctx, repository.CreateReportParams{
			TaskID:          taskID,
			Title:           req.Title,
			Description:     req.Description,
			FechaResolucion: now,
		})
		if err != nil {
			return err
		}
		created = rep

		done := true
		if _, err := s.repo.UpdateTask(ctx, taskID, repository.UpdateTaskParams{
			Done:        &done,
			ResolvedAt:  &now,
			ResueltoPor: s.resolveActor(ctx, actorUserName),
		}); err != nil {
			return err
		}

		db.OnCommit(ctx, func(ctx context.Context) {
			if s.progress == nil {
				return
			}
			entry := ProgressEntry{
				TaskID:        taskID,
				ReportID:      rep.ID,
				Title:         req.Title,
				Description:   req.Description,
				ActorUserName: actorUserName,
			}
			if err := s.progress.LogReportProgress(ctx, entry); err != nil {
				s.log.Error("progress evento for report failed", "task_id", taskID, "report_id", rep.ID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		return transport.ReportResponse{}, err
	}
	return toReportResponse(created), nil
}

// GetReport retrieves a report by ID.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (transport.ReportResponse, error) {
	rep, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	return toReportResponse(rep), nil
}

func (s *Service) resolveActor(ctx context.Context, userName string) *uuid.UUID {
	if s.actors == nil {
		return nil
	}
	return s.actors.ResolveActorID(ctx, userName)
}

func toTaskResponse(t repository.Task) transport.TaskResponse {
	resp := transport.TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Done:         t.Done,
		Campus:       t.Campus,
		UbicacionID:  t.UbicacionID,
		ReportadoPor: t.ReportadoPor,
		ResueltoPor:  t.ResueltoPor,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.ResolvedAt != nil {
		formatted := t.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &formatted
	}
	return resp
}

func toReportResponse(r repository.Report) transport.ReportResponse {
	resp := transport.ReportResponse{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.FechaResolucion != nil {
		formatted := r.FechaResolucion.Format(time.RFC3339)
		resp.FechaResolucion = &formatted
	}
	return resp
}
