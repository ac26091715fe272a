package medication

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
	Name         string  `json:"name" binding:"required,max=100"`
	Dosage       string  `json:"dosage" binding:"required,max=50"`
	Quantity     *int    `json:"quantity" binding:"required,min=0"`
	Instructions *string `json:"instructions"`
	Image        *string `json:"image" binding:"omitempty,max=255"`
}

type updateRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=100"`
	Dosage       *string `json:"dosage" binding:"omitempty,max=50"`
	Quantity     *int    `json:"quantity" binding:"omitempty,min=0"`
	Instructions *string `json:"instructions"`
	Image        *string `json:"image" binding:"omitempty,max=255"`
}

func (h *Handler) List(c *gin.Context) {
	meds, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list medications", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.MedicationListSuccess, NewPayloads(meds))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	m, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "failed to get medication", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.MedicationDetailSuccess, NewPayload(m))
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := identity.Get(c)
	if !ok {
		h.responder.Error(c, http.StatusForbidden, response.Forbidden)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	m, err := h.service.Create(c.Request.Context(), caller.UserID, CreateInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Quantity:     *req.Quantity,
		Instructions: req.Instructions,
		Image:        req.Image,
	})
	if err != nil {
		h.fail(c, "failed to create medication", err)
		return
	}
	h.responder.JSON(c, http.StatusCreated, response.MedicationCreated, NewPayload(m))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	m, err := h.service.Update(c.Request.Context(), id, UpdateInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		Quantity:     req.Quantity,
		Instructions: req.Instructions,
		Image:        req.Image,
	})
	if err != nil {
		h.fail(c, "failed to update medication", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.MedicationUpdated, NewPayload(m))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "failed to delete medication", err)
		return
	}
	h.responder.JSON(c, http.StatusOK, response.MedicationDeleted, nil)
}

func (h *Handler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.responder.Error(c, http.StatusNotFound, response.NotFound)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	var verr *response.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		h.responder.Error(c, http.StatusNotFound, response.MedicationNotFound)
	case errors.As(err, &verr):
		h.responder.Validation(c, verr)
	default:
		h.log.Error(msg, zap.Error(err))
		h.responder.Unexpected(c)
	}
}
