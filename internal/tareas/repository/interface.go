package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task priorities.
const (
	PriorityAlta  = "Alta"
	PriorityMedia = "Media"
	PriorityBaja  = "Baja"
)

// Task is a reported incident tied to a geocoded ubicacion.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Done         bool       `json:"done"`
	Campus       string     `json:"campus"`
	UbicacionID  uuid.UUID  `json:"ubicacionId"`
	ReportadoPor *uuid.UUID `json:"reportadoPor"`
	ResueltoPor  *uuid.UUID `json:"resueltoPor"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt"`
}

// Report is the closing write-up of a task.
type Report struct {
	ID              uuid.UUID  `json:"id"`
	TaskID          uuid.UUID  `json:"taskId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	FechaResolucion *time.Time `json:"fechaResolucion"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CreateTaskParams are the inputs for inserting a task.
type CreateTaskParams struct {
	Title        string
	Description  string
	Priority     string
	Campus       string
	UbicacionID  uuid.UUID
	ReportadoPor *uuid.UUID
}

// UpdateTaskParams carries a partial task update. Nil fields are untouched.
type UpdateTaskParams struct {
	Priority    *string
	Done        *bool
	ResueltoPor *uuid.UUID
	ResolvedAt  *time.Time
}

// CreateReportParams are the inputs for inserting a report.
type CreateReportParams struct {
	TaskID          uuid.UUID
	Title           string
	Description     string
	FechaResolucion time.Time
}

// ListFilter narrows task listings. Nil means no filter.
type ListFilter struct {
	Done *bool
}

// Repository defines the persistence operations for tasks and reports.
type Repository interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (Task, error)
	ListTasks(ctx context.Context, filter ListFilter) ([]Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	CreateReport(ctx context.Context, params CreateReportParams) (Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (Report, error)
}
