package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reportes_backend/internal/eventos/repository"
	"reportes_backend/internal/eventos/transport"
	"reportes_backend/platform/apperr"
)

// CreateCompromiso creates a compromiso by hand. An empty fecha gets the
// same one-week default as the automatic follow-up.
func (s *Service) CreateCompromiso(ctx context.Context, req transport.CreateCompromisoRequest, actorUserName string) (transport.CompromisoResponse, error) {
	fecha := time.Now().Add(compromisoOffset)
	if req.FechaCompromiso != "" {
		parsed, err := time.Parse(time.RFC3339, req.FechaCompromiso)
		if err != nil {
			return transport.CompromisoResponse{}, apperr.Validation("fechaCompromiso must be RFC 3339")
		}
		fecha = parsed
	}

	var created repository.Compromiso
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		c, err := s.repo.CreateCompromiso(ctx, repository.CreateCompromisoParams{
			EventoID:        req.EventoID,
			TaskID:          req.TaskID,
			Descripcion:     req.Descripcion,
			FechaCompromiso: fecha,
			CreadoPor:       s.empleados.ResolveActorID(ctx, actorUserName),
		})
		if err != nil {
			return err
		}
		created = c

		for _, id := range req.ParticipanteIDs {
			if err := s.repo.AttachCompromisoParticipante(ctx, c.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return transport.CompromisoResponse{}, err
	}
	return toCompromisoResponse(created), nil
}

// GetCompromiso retrieves a compromiso by ID.
func (s *Service) GetCompromiso(ctx context.Context, id uuid.UUID) (transport.CompromisoResponse, error) {
	c, err := s.repo.GetCompromiso(ctx, id)
	if err != nil {
		return transport.CompromisoResponse{}, err
	}
	return toCompromisoResponse(c), nil
}

// ListCompromisos retrieves compromisos with optional task and completion
// filters.
func (s *Service) ListCompromisos(ctx context.Context, taskID *uuid.UUID, cumplido *bool) (transport.CompromisoListResponse, error) {
	items, err := s.repo.ListCompromisos(ctx, repository.CompromisoFilter{TaskID: taskID, Cumplido: cumplido})
	if err != nil {
		return transport.CompromisoListResponse{}, err
	}

	resp := transport.CompromisoListResponse{
		Items: make([]transport.CompromisoResponse, 0, len(items)),
		Total: len(items),
	}
	for _, c := range items {
		resp.Items = append(resp.Items, toCompromisoResponse(c))
	}
	return resp, nil
}

// UpdateCompromiso applies a partial update.
func (s *Service) UpdateCompromiso(ctx context.Context, id uuid.UUID, req transport.UpdateCompromisoRequest) (transport.CompromisoResponse, error) {
	params := repository.UpdateCompromisoParams{
		Descripcion: req.Descripcion,
		Cumplido:    req.Cumplido,
	}
	if req.FechaCompromiso != nil {
		parsed, err := time.Parse(time.RFC3339, *req.FechaCompromiso)
		if err != nil {
			return transport.CompromisoResponse{}, apperr.Validation("fechaCompromiso must be RFC 3339")
		}
		params.FechaCompromiso = &parsed
	}

	c, err := s.repo.UpdateCompromiso(ctx, id, params)
	if err != nil {
		return transport.CompromisoResponse{}, err
	}
	return toCompromisoResponse(c), nil
}

// DeleteCompromiso removes a compromiso.
func (s *Service) DeleteCompromiso(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCompromiso(ctx, id)
}

// CreateParticipante registers a participante in the catalog.
func (s *Service) CreateParticipante(ctx context.Context, req transport.CreateParticipanteRequest) (transport.ParticipanteResponse, error) {
	p, err := s.repo.CreateParticipante(ctx, repository.CreateParticipanteParams{
		Nombre:   req.Nombre,
		Rol:      req.Rol,
		Telefono: req.Telefono,
		Email:    req.Email,
	})
	if err != nil {
		return transport.ParticipanteResponse{}, err
	}
	return toParticipanteResponse(p), nil
}

// ListParticipantes retrieves the participante catalog.
func (s *Service) ListParticipantes(ctx context.Context) (transport.ParticipanteListResponse, error) {
	items, err := s.repo.ListParticipantes(ctx)
	if err != nil {
		return transport.ParticipanteListResponse{}, err
	}

	resp := transport.ParticipanteListResponse{
		Items: make([]transport.ParticipanteResponse, 0, len(items)),
		Total: len(items),
	}
	for _, p := range items {
		resp.Items = append(resp.Items, toParticipanteResponse(p))
	}
	return resp, nil
}

func toCompromisoResponse(c repository.Compromiso) transport.CompromisoResponse {
	return transport.CompromisoResponse{
		ID:              c.ID,
		EventoID:        c.EventoID,
		TaskID:          c.TaskID,
		Descripcion:     c.Descripcion,
		FechaCompromiso: c.FechaCompromiso.Format(time.RFC3339),
		Cumplido:        c.Cumplido,
		CreadoPor:       c.CreadoPor,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}
