package transport

import "github.com/google/uuid"

// CreateEmpleadoRequest contains data for registering an empleado.
type CreateEmpleadoRequest struct {
	UserName       string `json:"userName" validate:"required,min=1,max=100"`
	NombreEmpleado string `json:"nombreEmpleado" validate:"required,min=1,max=255"`
	Ubicacion      string `json:"ubicacion" validate:"omitempty,max=255"`
	Campus         string `json:"campus" validate:"omitempty,max=100"`
	Puesto         string `json:"puesto" validate:"omitempty,max=100"`
	Email          string `json:"email" validate:"omitempty,email,max=255"`
	Celular        string `json:"celular" validate:"omitempty,max=32"`
}

// EmpleadoResponse represents an empleado in API responses.
type EmpleadoResponse struct {
	ID             uuid.UUID `json:"id"`
	UserName       string    `json:"userName"`
	NombreEmpleado string    `json:"nombreEmpleado"`
	Ubicacion      string    `json:"ubicacion,omitempty"`
	Campus         string    `json:"campus,omitempty"`
	Puesto         string    `json:"puesto,omitempty"`
	Email          string    `json:"email,omitempty"`
	Celular        string    `json:"celular,omitempty"`
}

// EmpleadoListResponse wraps a list of empleados.
type EmpleadoListResponse struct {
	Items []EmpleadoResponse `json:"items"`
	Total int                `json:"total"`
}
