// Package ubicaciones provides the location bounded context module.
// It owns the ubicacion lifecycle: creation, asynchronous reverse geocoding
// and status polling.
package ubicaciones

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"reportes_backend/internal/events"
	apphttp "reportes_backend/internal/http"
	"reportes_backend/internal/scheduler"
	"reportes_backend/internal/ubicaciones/handler"
	"reportes_backend/internal/ubicaciones/repository"
	"reportes_backend/internal/ubicaciones/service"
	"reportes_backend/platform/config"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"
)

// Module is the ubicaciones bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the ubicaciones module.
func NewModule(pool *pgxpool.Pool, geocoder service.Geocoder, jobs scheduler.JobScheduler, bus events.Bus, cfg config.GeocodeConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, db.NewTransactor(pool), geocoder, jobs, bus, log, cfg.GetGeocodeMaxRetries(), cfg.GetGeocodeRetryDelay())
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "ubicaciones"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts ubicacion routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.V1.Group("/ubicaciones")
	grp.POST("/lookup", ctx.LookupRateLimiter.RateLimit(), m.handler.Lookup)
	grp.GET("/:id", m.handler.Get)
}

// RegisterEventHandlers subscribes the module to the domain events it reacts
// to. Any committed location that is not yet ready gets a resolver job, no
// matter which module created it.
func (m *Module) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.UbicacionCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.UbicacionCreated)
		if !ok {
			return nil
		}
		return m.service.EnqueueIfNotReady(ctx, e.UbicacionID, e.Status)
	}))
}
