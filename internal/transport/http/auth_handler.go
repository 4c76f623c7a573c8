package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/auth"
)

// AuthHandler 处理管理员认证相关的 HTTP 请求
type AuthHandler struct {
	auth *auth.Service
	log  *zap.Logger
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *auth.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: authService, log: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

// Login 管理员登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, MsgInvalidCredentials)
			return
		}
		h.log.Error("登录处理失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	respondOK(c, gin.H{
		"token": result.Token,
		"user": gin.H{
			"email": result.Email,
			"role":  result.Role,
		},
		"mode": result.Mode,
	})
}

// RecoverPassword 密码找回（固定返回统一消息）
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var req recoverRequest
	_ = c.ShouldBindJSON(&req)

	respondOK(c, gin.H{"message": h.auth.RecoverPassword(req.Email)})
}
