package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/service"
)

// SettingsHandler 处理 SMTP 设置相关的 HTTP 请求
type SettingsHandler struct {
	smtp *service.SMTPService
	log  *zap.Logger
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(smtp *service.SMTPService, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{smtp: smtp, log: log}
}

// GetSMTP 返回当前 SMTP 设置（密码脱敏）
func (h *SettingsHandler) GetSMTP(c *gin.Context) {
	settings, err := h.smtp.Get()
	if err != nil {
		h.log.Error("获取 SMTP 设置失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	respondOK(c, gin.H{"settings": settings})
}

// SaveSMTP 保存 SMTP 设置
func (h *SettingsHandler) SaveSMTP(c *gin.Context) {
	var settings domain.SMTPSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	if err := h.smtp.Save(settings); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Msg)
			return
		}
		h.log.Error("保存 SMTP 设置失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	respondOK(c, nil)
}

// TestSMTP 用请求体中的设置测试 SMTP 连接
func (h *SettingsHandler) TestSMTP(c *gin.Context) {
	var settings domain.SMTPSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	if err := h.smtp.Test(settings); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Msg)
			return
		}
		h.log.Warn("SMTP 连接测试失败", zap.Error(err))
		respondError(c, http.StatusBadGateway, MsgSMTPTestFailed)
		return
	}
	respondOK(c, gin.H{"message": MsgSMTPTestOK})
}
