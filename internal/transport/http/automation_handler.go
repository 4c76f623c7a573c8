package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/service"
)

// AutomationHandler 处理自动化规则相关的 HTTP 请求
type AutomationHandler struct {
	automations *service.AutomationService
	log         *zap.Logger
}

// NewAutomationHandler 创建自动化处理器
func NewAutomationHandler(automations *service.AutomationService, log *zap.Logger) *AutomationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutomationHandler{automations: automations, log: log}
}

type createAutomationRequest struct {
	Name          string                     `json:"name"`
	Trigger       string                     `json:"trigger"`
	Active        bool                       `json:"active"`
	EmailTemplate *domain.AutomationTemplate `json:"emailTemplate"`
}

// List 返回全部自动化规则
func (h *AutomationHandler) List(c *gin.Context) {
	automations, err := h.automations.List()
	if err != nil {
		h.log.Error("获取自动化列表失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	respondOK(c, gin.H{"automations": automations})
}

// Create 创建自动化规则
func (h *AutomationHandler) Create(c *gin.Context) {
	var req createAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	input := service.CreateAutomationInput{
		Name:    req.Name,
		Trigger: domain.AutomationTrigger(req.Trigger),
		Active:  req.Active,
	}
	if req.EmailTemplate != nil {
		input.Subject = req.EmailTemplate.Subject
		input.Content = req.EmailTemplate.Content
	}

	automation, err := h.automations.Create(input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Msg)
			return
		}
		h.log.Error("创建自动化失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	respondOK(c, gin.H{"automation": automation})
}

// Update 部分更新自动化规则
func (h *AutomationHandler) Update(c *gin.Context) {
	var patch domain.AutomationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	automation, err := h.automations.Update(c.Param("id"), patch)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, http.StatusNotFound, MsgAutomationNotFound)
		case errors.As(err, &verr):
			respondError(c, http.StatusBadRequest, verr.Msg)
		default:
			h.log.Error("更新自动化失败", zap.Error(err))
			respondError(c, http.StatusInternalServerError, MsgInternalError)
		}
		return
	}

	respondOK(c, gin.H{"automation": automation})
}
