// Package eventos provides the task-progress bounded context module:
// progress eventos, follow-up compromisos and the participante catalog.
package eventos

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"reportes_backend/internal/events"
	"reportes_backend/internal/eventos/handler"
	"reportes_backend/internal/eventos/repository"
	"reportes_backend/internal/eventos/service"
	apphttp "reportes_backend/internal/http"
	"reportes_backend/internal/scheduler"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"
)

// Module is the eventos bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the eventos module. The report reader is
// wired afterwards via Service().SetReportReader.
func NewModule(pool *pgxpool.Pool, jobs scheduler.JobScheduler, bus events.Bus, notifier service.Notifier, tasks service.TaskReader, empleados service.EmpleadoDirectory, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, db.NewTransactor(pool), jobs, bus, notifier, tasks, empleados, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "eventos"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts evento, compromiso and participante routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ev := ctx.V1.Group("/eventos")
	ev.GET("", m.handler.ListEventos)
	ev.POST("", m.handler.CreateEvento)
	ev.GET("/:id", m.handler.GetEvento)

	tareas := ctx.V1.Group("/tareas/:id/eventos")
	tareas.GET("", m.handler.ListTaskEventos)
	tareas.POST("", m.handler.CreateTaskEvento)

	comp := ctx.V1.Group("/compromisos")
	comp.GET("", m.handler.ListCompromisos)
	comp.POST("", m.handler.CreateCompromiso)
	comp.GET("/:id", m.handler.GetCompromiso)
	comp.PATCH("/:id", m.handler.UpdateCompromiso)
	comp.DELETE("/:id", m.handler.DeleteCompromiso)

	part := ctx.V1.Group("/participantes")
	part.GET("", m.handler.ListParticipantes)
	part.POST("", m.handler.CreateParticipante)
}

// RegisterEventHandlers subscribes observability handlers for evento
// creation.
func (m *Module) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.EventoCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, event events.Event) error {
		if e, ok := event.(events.EventoCreated); ok {
			m.log.Info("evento created", "evento_id", e.EventoID, "task_id", e.TaskID)
		}
		return nil
	}))
}
