package adapters

import (
	"context"

	"github.com/google/uuid"

	empsvc "reportes_backend/internal/empleados/service"
	eventosvc "reportes_backend/internal/eventos/service"
	tareasvc "reportes_backend/internal/tareas/service"
)

// EmpleadoDirectoryAdapter exposes the empleados service as the actor and
// contact directory other modules consume. Implements both
// tareas/service.ActorResolver and eventos/service.EmpleadoDirectory.
type EmpleadoDirectoryAdapter struct {
	svc *empsvc.Service
}

func NewEmpleadoDirectoryAdapter(svc *empsvc.Service) *EmpleadoDirectoryAdapter {
	return &EmpleadoDirectoryAdapter{svc: svc}
}

var (
	_ tareasvc.ActorResolver      = (*EmpleadoDirectoryAdapter)(nil)
	_ eventosvc.EmpleadoDirectory = (*EmpleadoDirectoryAdapter)(nil)
)

func (a *EmpleadoDirectoryAdapter) ResolveActorID(ctx context.Context, userName string) *uuid.UUID {
	e := a.svc.ResolveActor(ctx, userName)
	if e == nil {
		return nil
	}
	return &e.ID
}

func (a *EmpleadoDirectoryAdapter) GetContact(ctx context.Context, id uuid.UUID) (eventosvc.Contact, bool) {
	e, err := a.svc.GetByID(ctx, id)
	if err != nil {
		return eventosvc.Contact{}, false
	}
	return eventosvc.Contact{
		Nombre:   e.NombreEmpleado,
		Email:    e.Email,
		Telefono: e.Celular,
	}, true
}
