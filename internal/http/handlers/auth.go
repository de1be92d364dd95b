package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/domain"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/http/response"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/ctxutil"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthHandler(log *logger.Logger, auth services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("Handler", "AuthHandler"), auth: auth}
}

// POST /api/auth/otp
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var body struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.auth.RequestOTP(c.Request.Context(), body.PhoneNumber)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/auth/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body struct {
		PhoneNumber string          `json:"phone_number" binding:"required"`
		Code        string          `json:"code" binding:"required"`
		Role        domain.UserRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if body.Role == "" {
		body.Role = domain.RoleStudent
	}

	pair, err := h.auth.VerifyOTP(c.Request.Context(), body.PhoneNumber, body.Code, body.Role)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, pair)
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), body.Refresh)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, pair)
}

// GET /api/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.User == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	response.RespondOK(c, gin.H{"user": rd.User})
}
