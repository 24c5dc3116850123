package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Participante roles.
const (
	RolProveedor = "Proveedor"
	RolAutoridad = "Autoridad"
	RolAsesor    = "Asesor"
	RolIngeniero = "Ingeniero"
	RolOtro      = "Otro"
)

// Evento is an immutable progress entry on a task.
type Evento struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"taskId"`
	Descripcion string     `json:"descripcion"`
	CreadoPor   *uuid.UUID `json:"creadoPor"`
	ReportID    *uuid.UUID `json:"reportId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Compromiso is a follow-up commitment with a target date.
type Compromiso struct {
	ID              uuid.UUID  `json:"id"`
	EventoID        *uuid.UUID `json:"eventoId"`
	TaskID          uuid.UUID  `json:"taskId"`
	Descripcion     string     `json:"descripcion"`
	FechaCompromiso time.Time  `json:"fechaCompromiso"`
	Cumplido        bool       `json:"cumplido"`
	CreadoPor       *uuid.UUID `json:"creadoPor"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Participante is an external party involved in eventos and compromisos.
type Participante struct {
	ID       uuid.UUID `json:"id"`
	Nombre   string    `json:"nombre"`
	Rol      string    `json:"rol"`
	Telefono string    `json:"telefono"`
	Email    string    `json:"email"`
}

// CreateEventoParams are the inputs for inserting an evento.
type CreateEventoParams struct {
	TaskID      uuid.UUID
	Descripcion string
	CreadoPor   *uuid.UUID
	ReportID    *uuid.UUID
}

// CreateCompromisoParams are the inputs for inserting a compromiso.
type CreateCompromisoParams struct {
	EventoID        *uuid.UUID
	TaskID          uuid.UUID
	Descripcion     string
	FechaCompromiso time.Time
	CreadoPor       *uuid.UUID
}

// UpdateCompromisoParams carries a partial compromiso update.
type UpdateCompromisoParams struct {
	Descripcion     *string
	FechaCompromiso *time.Time
	Cumplido        *bool
}

// CreateParticipanteParams are the inputs for inserting a participante.
type CreateParticipanteParams struct {
	Nombre   string
	Rol      string
	Telefono string
	Email    string
}

// EventoFilter narrows evento listings.
type EventoFilter struct {
	TaskID *uuid.UUID
}

// CompromisoFilter narrows compromiso listings.
type CompromisoFilter struct {
	TaskID   *uuid.UUID
	Cumplido *bool
}

// Repository defines the persistence operations for eventos, compromisos
// and participantes.
type Repository interface {
	CreateEvento(ctx context.Context, params CreateEventoParams) (Evento, error)
	GetEvento(ctx context.Context, id uuid.UUID) (Evento, error)
	ListEventos(ctx context.Context, filter EventoFilter) ([]Evento, error)

	CreateCompromiso(ctx context.Context, params CreateCompromisoParams) (Compromiso, error)
	GetCompromiso(ctx context.Context, id uuid.UUID) (Compromiso, error)
	ListCompromisos(ctx context.Context, filter CompromisoFilter) ([]Compromiso, error)
	UpdateCompromiso(ctx context.Context, id uuid.UUID, params UpdateCompromisoParams) (Compromiso, error)
	DeleteCompromiso(ctx context.Context, id uuid.UUID) error

	CreateParticipante(ctx context.Context, params CreateParticipanteParams) (Participante, error)
	GetParticipante(ctx context.Context, id uuid.UUID) (Participante, error)
	ListParticipantes(ctx context.Context) ([]Participante, error)

	AttachEventoParticipante(ctx context.Context, eventoID, participanteID uuid.UUID) error
	ListEventoParticipantes(ctx context.Context, eventoID uuid.UUID) ([]Participante, error)
	AttachCompromisoParticipante(ctx context.Context, compromisoID, participanteID uuid.UUID) error
	ListCompromisoParticipantes(ctx context.Context, compromisoID uuid.UUID) ([]Participante, error)
}
