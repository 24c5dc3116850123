package service

import (
	"context"

	"github.com/google/uuid"

	"reportes_backend/internal/empleados/repository"
	"reportes_backend/internal/empleados/transport"
	"reportes_backend/platform/logger"
)

// Service provides business logic for empleados.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new empleados service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create registers a new empleado.
func (s *Service) Create(ctx context.Context, req transport.CreateEmpleadoRequest) (transport.EmpleadoResponse, error) {
	e, err := s.repo.Create(ctx, repository.CreateParams{
		UserName:       req.UserName,
		NombreEmpleado: req.NombreEmpleado,
		Ubicacion:      req.Ubicacion,
		Campus:         req.Campus,
		Puesto:         req.Puesto,
		Email:          req.Email,
		Celular:        req.Celular,
	})
	if err != nil {
		return transport.EmpleadoResponse{}, err
	}
	return toResponse(e), nil
}

// GetByID retrieves an empleado by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EmpleadoResponse, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EmpleadoResponse{}, err
	}
	return toResponse(e), nil
}

// GetByUserName retrieves an empleado by the acting user's name.
func (s *Service) GetByUserName(ctx context.Context, userName string) (transport.EmpleadoResponse, error) {
	e, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		return transport.EmpleadoResponse{}, err
	}
	return toResponse(e), nil
}

// List retrieves all empleados.
func (s *Service) List(ctx context.Context) (transport.EmpleadoListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return transport.EmpleadoListResponse{}, err
	}

	resp := transport.EmpleadoListResponse{
		Items: make([]transport.EmpleadoResponse, 0, len(items)),
		Total: len(items),
	}
	for _, e := range items {
		resp.Items = append(resp.Items, toResponse(e))
	}
	return resp, nil
}

// ResolveActor looks up the empleado behind a username, tolerating absence.
// Cross-module callers use it to attribute actions without failing when the
// acting user has no empleado record.
func (s *Service) ResolveActor(ctx context.Context, userName string) *repository.Empleado {
	if userName == "" {
		return nil
	}
	e, err := s.repo.GetByUserName(ctx, userName)
	if err != nil {
		return nil
	}
	return &e
}

func toResponse(e repository.Empleado) transport.EmpleadoResponse {
	return transport.EmpleadoResponse{
		ID:             e.ID,
		UserName:       e.UserName,
		NombreEmpleado: e.NombreEmpleado,
		Ubicacion:      e.Ubicacion,
		Campus:         e.Campus,
		Puesto:         e.Puesto,
		Email:          e.Email,
		Celular:        e.Celular,
	}
}
