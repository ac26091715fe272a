package refill

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

type Handler struct {
	service   *Service
	responder *response.Responder
	log       *zap.Logger
}

func NewHandler(service *Service, responder *response.Responder, log *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		responder: responder,
		log:       log,
	}
}

type createRequest struct {
	Medication *uint `json:"medication" binding:"required"`
	Quantity   *int  `json:"quantity"`
}

type updateRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (h *Handler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	reqs, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, "failed to list refill requests", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.RefillRequestListSuccess, NewDetailPayloads(reqs))
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, *req.Medication, req.Quantity)
	if err != nil {
		h.fail(c, "failed to create refill request", err)
		return
	}
	h.responder.JSON(c, http.StatusCreated, response.RefillRequestCreated, NewPayload(created))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.responder.Error(c, http.StatusNotFound, response.NotFound)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		h.fail(c, "failed to update refill request", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.RefillRequestUpdated, NewPayload(updated))
}

func (h *Handler) Aggregate(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	rows, err := h.service.Aggregate(c.Request.Context(), caller)
	if err != nil {
		h.fail(c, "failed to aggregate refill requests", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.RefillRequestAggregateSuccess, rows)
}

func (h *Handler) caller(c *gin.Context) (*identity.Identity, bool) {
	id, ok := identity.Get(c)
	if !ok {
		h.responder.Error(c, http.StatusForbidden, response.Forbidden)
	}
	return id, ok
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	var verr *response.ValidationError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMedicationNotFound):
		h.responder.Error(c, http.StatusNotFound, response.RefillRequestNotFound)
	case errors.As(err, &verr):
		h.responder.Validation(c, verr)
	default:
		h.log.Error(msg, zap.Error(err))
		h.responder.Unexpected(c)
	}
}
