package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/service"
)

// TemplateHandler 处理邮件模板目录的 HTTP 请求
type TemplateHandler struct {
	templates *service.TemplateService
	log       *zap.Logger
}

// NewTemplateHandler 创建模板处理器
func NewTemplateHandler(templates *service.TemplateService, log *zap.Logger) *TemplateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateHandler{templates: templates, log: log}
}

// List 返回模板目录
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List()
	if err != nil {
		h.log.Error("获取模板目录失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	respondOK(c, gin.H{"templates": templates})
}
