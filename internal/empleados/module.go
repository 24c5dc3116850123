// Package empleados provides the staff directory bounded context module.
package empleados

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"reportes_backend/internal/empleados/handler"
	"reportes_backend/internal/empleados/repository"
	"reportes_backend/internal/empleados/service"
	apphttp "reportes_backend/internal/http"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"
)

// Module is the empleados bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the empleados module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "empleados"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts empleado routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.V1.Group("/empleados")
	grp.GET("", m.handler.List)
	grp.POST("", m.handler.Create)
	grp.GET("/me", m.handler.Me)
	grp.GET("/:id", m.handler.Get)
}
