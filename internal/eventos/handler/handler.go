package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportes_backend/internal/eventos/service"
	"reportes_backend/internal/eventos/transport"
	"reportes_backend/platform/httpkit"
	"reportes_backend/platform/validator"
)

// Handler handles HTTP requests for eventos, compromisos and participantes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid ID"
)

// New creates a new eventos handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateEvento logs a progress evento; the task comes from the body.
// POST /api/v1/eventos
func (h *Handler) CreateEvento(c *gin.Context) {
	var req transport.CreateEventoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if req.TaskID == nil {
		httpkit.Error(c, http.StatusBadRequest, "taskId is required", nil)
		return
	}

	h.createEvento(c, *req.TaskID, req)
}

// CreateTaskEvento logs a progress evento on the task in the URL.
// POST /api/v1/tareas/:id/eventos
func (h *Handler) CreateTaskEvento(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CreateEventoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	h.createEvento(c, taskID, req)
}

func (h *Handler) createEvento(c *gin.Context, taskID uuid.UUID, req transport.CreateEventoRequest) {
	resp, err := h.svc.CreateEvento(c.Request.Context(), service.CreateEventoInput{
		TaskID:           taskID,
		Descripcion:      req.Descripcion,
		ActorUserName:    httpkit.CurrentUser(c),
		ParticipanteIDs:  req.ParticipanteIDs,
		NewParticipantes: req.NewParticipantes,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// ListEventos retrieves eventos, optionally filtered with ?taskId=.
// GET /api/v1/eventos
func (h *Handler) ListEventos(c *gin.Context) {
	var taskID *uuid.UUID
	if raw := c.Query("taskId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid taskId filter", nil)
			return
		}
		taskID = &parsed
	}

	resp, err := h.svc.ListEventos(c.Request.Context(), taskID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// ListTaskEventos retrieves the eventos of the task in the URL.
// GET /api/v1/tareas/:id/eventos
func (h *Handler) ListTaskEventos(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	resp, err := h.svc.ListEventos(c.Request.Context(), &taskID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GetEvento retrieves an evento with its participants.
// GET /api/v1/eventos/:id
func (h *Handler) GetEvento(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	resp, err := h.svc.GetEvento(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// CreateCompromiso creates a compromiso by hand.
// POST /api/v1/compromisos
func (h *Handler) CreateCompromiso(c *gin.Context) {
	var req transport.CreateCompromisoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateCompromiso(c.Request.Context(), req, httpkit.CurrentUser(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// ListCompromisos retrieves compromisos with ?taskId= and ?cumplido= filters.
// GET /api/v1/compromisos
func (h *Handler) ListCompromisos(c *gin.Context) {
	var taskID *uuid.UUID
	if raw := c.Query("taskId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid taskId filter", nil)
			return
		}
		taskID = &parsed
	}
	var cumplido *bool
	if raw := c.Query("cumplido"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid cumplido filter", nil)
			return
		}
		cumplido = &parsed
	}

	resp, err := h.svc.ListCompromisos(c.Request.Context(), taskID, cumplido)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// GetCompromiso retrieves a compromiso by ID.
// GET /api/v1/compromisos/:id
func (h *Handler) GetCompromiso(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	resp, err := h.svc.GetCompromiso(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// UpdateCompromiso applies a partial update.
// PATCH /api/v1/compromisos/:id
func (h *Handler) UpdateCompromiso(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateCompromisoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.UpdateCompromiso(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// DeleteCompromiso removes a compromiso.
// DELETE /api/v1/compromisos/:id
func (h *Handler) DeleteCompromiso(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteCompromiso(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

// CreateParticipante registers a participante.
// POST /api/v1/participantes
func (h *Handler) CreateParticipante(c *gin.Context) {
	var req transport.CreateParticipanteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.CreateParticipante(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, resp)
}

// ListParticipantes retrieves the participante catalog.
// GET /api/v1/participantes
func (h *Handler) ListParticipantes(c *gin.Context) {
	resp, err := h.svc.ListParticipantes(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
