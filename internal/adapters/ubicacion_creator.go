// Package adapters wires module services to the ports other modules define,
// keeping bounded contexts free of direct dependencies on each other.
package adapters

import (
	"context"

	"github.com/google/uuid"

	tareasvc "reportes_backend/internal/tareas/service"
	ubisvc "reportes_backend/internal/ubicaciones/service"
)

// UbicacionCreatorAdapter lets the tareas module create a location inline
// with a task. Implements tareas/service.UbicacionCreator.
type UbicacionCreatorAdapter struct {
	svc *ubisvc.Service
}

func NewUbicacionCreatorAdapter(svc *ubisvc.Service) *UbicacionCreatorAdapter {
	return &UbicacionCreatorAdapter{svc: svc}
}

var _ tareasvc.UbicacionCreator = (*UbicacionCreatorAdapter)(nil)

func (a *UbicacionCreatorAdapter) CreateProcessing(ctx context.Context, nombre string, lat, lon *float64) (uuid.UUID, error) {
	u, err := a.svc.Create(ctx, nombre, lat, lon)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}
