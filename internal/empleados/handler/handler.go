package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportes_backend/internal/empleados/service"
	"reportes_backend/internal/empleados/transport"
	"reportes_backend/platform/httpkit"
	"reportes_backend/platform/validator"
)

// Handler handles HTTP requests for empleados.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid empleado ID"
)

// New creates a new empleados handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create registers a new empleado.
// POST /api/v1/empleados
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEmpleadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// List retrieves all empleados.
// GET /api/v1/empleados
func (h *Handler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Get retrieves an empleado by ID.
// GET /api/v1/empleados/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Me retrieves the empleado record behind the acting user.
// GET /api/v1/empleados/me
func (h *Handler) Me(c *gin.Context) {
	user := httpkit.CurrentUser(c)
	if user == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing identity header", nil)
		return
	}

	resp, err := h.svc.GetByUserName(c.Request.Context(), user)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
