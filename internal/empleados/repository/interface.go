package repository

import (
	"context"

	"github.com/google/uuid"
)

// Empleado is a staff member that can be referenced by tasks, events and
// compromisos. Ubicacion here is free text (a desk or building label), not a
// geocoded location.
type Empleado struct {
	ID             uuid.UUID `json:"id"`
	UserName       string    `json:"userName"`
	NombreEmpleado string    `json:"nombreEmpleado"`
	Ubicacion      string    `json:"ubicacion"`
	Campus         string    `json:"campus"`
	Puesto         string    `json:"puesto"`
	Email          string    `json:"email"`
	Celular        string    `json:"celular"`
}

// CreateParams are the inputs for inserting an empleado.
type CreateParams struct {
	UserName       string
	NombreEmpleado string
	Ubicacion      string
	Campus         string
	Puesto         string
	Email          string
	Celular        string
}

// Repository defines the persistence operations for empleados.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Empleado, error)
	GetByID(ctx context.Context, id uuid.UUID) (Empleado, error)
	GetByUserName(ctx context.Context, userName string) (Empleado, error)
	List(ctx context.Context) ([]Empleado, error)
}
