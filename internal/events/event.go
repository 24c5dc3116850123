// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"reportes_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Ubicaciones Domain Events
// =============================================================================

// UbicacionCreated is published after a location row is committed by any
// creation path. The ubicaciones module subscribes to it as a safety net:
// rows created outside the primary lookup flow still get a resolver job.
type UbicacionCreated struct {
	BaseEvent
	UbicacionID uuid.UUID `json:"ubicacionId"`
	Status      string    `json:"status"`
}

func (e UbicacionCreated) EventName() string { return "ubicaciones.created" }

// =============================================================================
// Eventos Domain Events
// =============================================================================

// EventoCreated is published after a progress event is committed, regardless
// of the entry point that created it.
type EventoCreated struct {
	BaseEvent
	EventoID uuid.UUID  `json:"eventoId"`
	TaskID   uuid.UUID  `json:"taskId"`
	ReportID *uuid.UUID `json:"reportId,omitempty"`
}

func (e EventoCreated) EventName() string { return "eventos.created" }
