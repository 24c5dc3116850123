// Package tareas provides the task and report bounded context module.
package tareas

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "reportes_backend/internal/http"
	"reportes_backend/internal/tareas/handler"
	"reportes_backend/internal/tareas/repository"
	"reportes_backend/internal/tareas/service"
	"reportes_backend/platform/db"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/validator"
)

// Module is the tareas bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the tareas module. The progress logger
// is wired afterwards via Service().SetProgressLogger.
func NewModule(pool *pgxpool.Pool, ubicacion service.UbicacionCreator, actors service.ActorResolver, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, db.NewTransactor(pool), ubicacion, actors, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tareas"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for read-side ports.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts task routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	grp := ctx.V1.Group("/tareas")
	grp.GET("", m.handler.List)
	grp.POST("", m.handler.Create)
	grp.GET("/:id", m.handler.Get)
	grp.PATCH("/:id", m.handler.Update)
	grp.DELETE("/:id", m.handler.Delete)
	grp.POST("/:id/report", m.handler.CreateReport)
}
