package transport

import "github.com/google/uuid"

// InlineUbicacion describes a location created together with a task.
type InlineUbicacion struct {
	Nombre string   `json:"nombre" validate:"required,min=1,max=255"`
	Lat    *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon    *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

// CreateTaskRequest contains data for creating a task. Exactly one of
// UbicacionID and Ubicacion must be set.
type CreateTaskRequest struct {
	Title       string           `json:"title" validate:"required,min=1,max=255"`
	Description string           `json:"description" validate:"omitempty,max=4000"`
	Priority    string           `json:"priority" validate:"required,oneof=Alta Media Baja"`
	Campus      string           `json:"campus" validate:"omitempty,max=100"`
	UbicacionID *uuid.UUID       `json:"ubicacionId"`
	Ubicacion   *InlineUbicacion `json:"ubicacion"`
}

// UpdateTaskRequest carries a partial task update.
type UpdateTaskRequest struct {
	Priority *string `json:"priority,omitempty" validate:"omitempty,oneof=Alta Media Baja"`
	Done     *bool   `json:"done,omitempty"`
}

// CreateReportRequest contains data for the report that closes a task.
type CreateReportRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required,min=1,max=8000"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     string     `json:"priority"`
	Done         bool       `json:"done"`
	Campus       string     `json:"campus,omitempty"`
	UbicacionID  uuid.UUID  `json:"ubicacionId"`
	ReportadoPor *uuid.UUID `json:"reportadoPor,omitempty"`
	ResueltoPor  *uuid.UUID `json:"resueltoPor,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	ResolvedAt   *string    `json:"resolvedAt,omitempty"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Total int            `json:"total"`
}

// ReportResponse represents a report in API responses.
type ReportResponse struct {
	ID              uuid.UUID `json:"id"`
	TaskID          uuid.UUID `json:"taskId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	FechaResolucion *string   `json:"fechaResolucion,omitempty"`
	CreatedAt       string    `json:"createdAt"`
}
