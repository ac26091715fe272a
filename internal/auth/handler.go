package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

type Handler struct {
	service    *Service
	middleware *AuthMiddleware
	responder  *response.Responder
	log        *zap.Logger
}

func NewHandler(service *Service, middleware *AuthMiddleware, responder *response.Responder, log *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		middleware: middleware,
		responder:  responder,
		log:        log,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username string        `json:"username" binding:"required,max=50"`
	Email    string        `json:"email" binding:"required,email,max=254"`
	Password string        `json:"password" binding:"required"`
	Role     identity.Role `json:"role"`
}

type userResponse struct {
	ID       uint          `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email,omitempty"`
	Role     identity.Role `json:"role"`
}

type userInfoResponse struct {
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     identity.Role `json:"role"`
}

type csrfResponse struct {
	CSRFToken string `json:"csrf_token"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.responder.Error(c, http.StatusUnauthorized, response.InvalidCredentials)
		case errors.Is(err, ErrAccountLocked):
			h.responder.Error(c, http.StatusForbidden, response.AccountLocked)
		default:
			h.log.Error("login failed",
				zap.String("username", req.Username),
				zap.Error(err))
			h.responder.Unexpected(c)
		}
		return
	}

	h.middleware.setSessionCookie(c, result)
	h.middleware.issueCSRFToken(c)

	h.responder.JSON(c, http.StatusOK, response.LoginSuccess, userResponse{
		ID:       result.User.ID,
		Username: result.User.Username,
		Role:     result.User.Role,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	id, ok := identity.Get(c)
	if !ok {
		h.responder.Error(c, http.StatusForbidden, response.Forbidden)
		return
	}

	if err := h.service.Logout(c.Request.Context(), id.SessionID); err != nil {
		h.log.Error("logout failed", zap.Uint("user_id", id.UserID), zap.Error(err))
		h.responder.Unexpected(c)
		return
	}

	h.middleware.clearSessionCookie(c)
	h.responder.JSON(c, http.StatusOK, response.LogoutSuccess, nil)
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Validation(c, response.FromBindError(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		var verr *response.ValidationError
		if errors.As(err, &verr) {
			h.responder.Validation(c, verr)
			return
		}
		h.log.Error("registration failed",
			zap.String("username", req.Username),
			zap.Error(err))
		h.responder.Unexpected(c)
		return
	}

	h.responder.JSON(c, http.StatusOK, response.RegistrationSuccess, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

func (h *Handler) UserInfo(c *gin.Context) {
	id, ok := identity.Get(c)
	if !ok {
		h.responder.Error(c, http.StatusForbidden, response.Forbidden)
		return
	}

	user, err := h.service.UserInfo(c.Request.Context(), id)
	if err != nil {
		h.log.Error("failed to load user info", zap.Uint("user_id", id.UserID), zap.Error(err))
		h.responder.Unexpected(c)
		return
	}

	h.responder.JSON(c, http.StatusOK, response.UserInfoSuccess, userInfoResponse{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	})
}

func (h *Handler) CSRFToken(c *gin.Context) {
	token := h.middleware.issueCSRFToken(c)
	h.responder.JSON(c, http.StatusOK, response.CSRFTokenIssued, csrfResponse{CSRFToken: token})
}
