package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportes_backend/internal/ubicaciones/service"
	"reportes_backend/internal/ubicaciones/transport"
	"reportes_backend/platform/httpkit"
	"reportes_backend/platform/validator"
)

// Handler handles HTTP requests for ubicaciones.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid ubicacion ID"
)

// New creates a new ubicaciones handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Lookup creates a location and schedules its reverse geocoding.
// POST /api/v1/ubicaciones/lookup
// Responds 201 when the location resolved to ready synchronously, 202 with a
// Location header pointing at the polling endpoint otherwise.
func (h *Handler) Lookup(c *gin.Context) {
	var req transport.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, ready, err := h.svc.CreateLookup(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	if ready {
		httpkit.Created(c, resp)
		return
	}
	httpkit.Accepted(c, "/api/v1/ubicaciones/"+resp.ID.String(), resp)
}

// Get retrieves a location by ID for status polling.
// GET /api/v1/ubicaciones/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
