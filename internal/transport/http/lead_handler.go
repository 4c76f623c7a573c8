package httptransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/service"
)

// LeadHandler 处理订阅者相关的 HTTP 请求
type LeadHandler struct {
	leads *service.LeadService
	log   *zap.Logger
}

// NewLeadHandler 创建订阅者处理器
func NewLeadHandler(leads *service.LeadService, log *zap.Logger) *LeadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadHandler{leads: leads, log: log}
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subscribe 落地页订阅端点（公开）
func (h *LeadHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgEmailRequired)
		return
	}

	result, err := h.leads.Subscribe(req.Email, req.Name)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Msg)
			return
		}
		h.log.Error("订阅处理失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	if result.AlreadySubscribed {
		respondOK(c, gin.H{
			"message":           MsgAlreadySubscribed,
			"alreadySubscribed": true,
		})
		return
	}

	respondOK(c, gin.H{
		"message": MsgSubscribed,
		"leadId":  result.LeadID,
	})
}

// List 返回全部订阅者（需要认证）
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.leads.List()
	if err != nil {
		h.log.Error("获取订阅者列表失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	respondOK(c, gin.H{"leads": leads})
}

// Delete 按邮箱删除订阅者（需要认证）
func (h *LeadHandler) Delete(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, MsgEmailRequired)
		return
	}

	err := h.leads.DeleteByEmail(email)
	switch {
	case err == nil:
		respondOK(c, nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, MsgLeadNotFound)
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, MsgEmailRequired)
	default:
		h.log.Error("删除订阅者失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
	}
}

// ExportCSV 导出订阅者列表（需要认证）
func (h *LeadHandler) ExportCSV(c *gin.Context) {
	data, err := h.leads.ExportCSV()
	if err != nil {
		h.log.Error("导出订阅者失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	filename := "leads-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
