package transport

import "github.com/google/uuid"

// NewParticipante describes a participante created inline with an evento.
type NewParticipante struct {
	Nombre   string `json:"nombre" validate:"required,min=1,max=255"`
	Rol      string `json:"rol" validate:"required,oneof=Proveedor Autoridad Asesor Ingeniero Otro"`
	Telefono string `json:"telefono" validate:"omitempty,max=32"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// CreateEventoRequest contains data for logging a progress evento. TaskID is
// taken from the URL on the nested endpoint.
type CreateEventoRequest struct {
	TaskID           *uuid.UUID        `json:"taskId"`
	Descripcion      string            `json:"descripcion" validate:"required,min=1,max=4000"`
	ParticipanteIDs  []uuid.UUID       `json:"participanteIds" validate:"omitempty,max=50"`
	NewParticipantes []NewParticipante `json:"newParticipantes" validate:"omitempty,max=50,dive"`
}

// EventoResponse represents an evento in API responses.
type EventoResponse struct {
	ID            uuid.UUID              `json:"id"`
	TaskID        uuid.UUID              `json:"taskId"`
	Descripcion   string                 `json:"descripcion"`
	CreadoPor     *uuid.UUID             `json:"creadoPor,omitempty"`
	ReportID      *uuid.UUID             `json:"reportId,omitempty"`
	CreatedAt     string                 `json:"createdAt"`
	Participantes []ParticipanteResponse `json:"participantes,omitempty"`
}

// EventoListResponse wraps a list of eventos.
type EventoListResponse struct {
	Items []EventoResponse `json:"items"`
	Total int              `json:"total"`
}

// CreateCompromisoRequest contains data for creating a compromiso by hand.
// FechaCompromiso is RFC 3339; empty means the one-week default.
type CreateCompromisoRequest struct {
	TaskID          uuid.UUID   `json:"taskId" validate:"required"`
	EventoID        *uuid.UUID  `json:"eventoId"`
	Descripcion     string      `json:"descripcion" validate:"required,min=1,max=4000"`
	FechaCompromiso string      `json:"fechaCompromiso" validate:"omitempty"`
	ParticipanteIDs []uuid.UUID `json:"participanteIds" validate:"omitempty,max=50"`
}

// UpdateCompromisoRequest carries a partial compromiso update.
type UpdateCompromisoRequest struct {
	Descripcion     *string `json:"descripcion,omitempty" validate:"omitempty,min=1,max=4000"`
	FechaCompromiso *string `json:"fechaCompromiso,omitempty"`
	Cumplido        *bool   `json:"cumplido,omitempty"`
}

// CompromisoResponse represents a compromiso in API responses.
type CompromisoResponse struct {
	ID              uuid.UUID  `json:"id"`
	EventoID        *uuid.UUID `json:"eventoId,omitempty"`
	TaskID          uuid.UUID  `json:"taskId"`
	Descripcion     string     `json:"descripcion"`
	FechaCompromiso string     `json:"fechaCompromiso"`
	Cumplido        bool       `json:"cumplido"`
	CreadoPor       *uuid.UUID `json:"creadoPor,omitempty"`
	CreatedAt       string     `json:"createdAt"`
}

// CompromisoListResponse wraps a list of compromisos.
type CompromisoListResponse struct {
	Items []CompromisoResponse `json:"items"`
	Total int                  `json:"total"`
}

// CreateParticipanteRequest contains data for registering a participante.
type CreateParticipanteRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=1,max=255"`
	Rol      string `json:"rol" validate:"required,oneof=Proveedor Autoridad Asesor Ingeniero Otro"`
	Telefono string `json:"telefono" validate:"omitempty,max=32"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// ParticipanteResponse represents a participante in API responses.
type ParticipanteResponse struct {
	ID       uuid.UUID `json:"id"`
	Nombre   string    `json:"nombre"`
	Rol      string    `json:"rol"`
	Telefono string    `json:"telefono,omitempty"`
	Email    string    `json:"email,omitempty"`
}

// ParticipanteListResponse wraps a list of participantes.
type ParticipanteListResponse struct {
	Items []ParticipanteResponse `json:"items"`
	Total int                    `json:"total"`
}
