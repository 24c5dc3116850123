package repository

import (
	"context"

	"github.com/google/uuid"
)

// Resolution status values. A row only ever moves forward:
// pending/processing are the non-terminal entry states, ready and failed are
// terminal. "processing" is the legacy entry status used by secondary
// creation paths and is treated exactly like pending.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusReady || status == StatusFailed
}

// Ubicacion is a named geographic point with asynchronous name resolution.
type Ubicacion struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
}

// CreateParams are the inputs for inserting a new location row.
type CreateParams struct {
	Nombre string
	Lat    *float64
	Lon    *float64
	Status string
}

// Repository defines the persistence operations for ubicaciones.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Ubicacion, error)
	GetByID(ctx context.Context, id uuid.UUID) (Ubicacion, error)
	// SetResolved moves a non-terminal row to ready, replacing the name when
	// nombre is non-empty. Returns false when the row was already terminal.
	SetResolved(ctx context.Context, id uuid.UUID, nombre string) (bool, error)
	// SetFailed moves a non-terminal row to failed. Returns false when the
	// row was already terminal.
	SetFailed(ctx context.Context, id uuid.UUID) (bool, error)
}
