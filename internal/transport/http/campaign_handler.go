package httptransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/service"
)

// CampaignHandler 处理活动相关的 HTTP 请求
type CampaignHandler struct {
	campaigns *service.CampaignService
	log       *zap.Logger
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(campaigns *service.CampaignService, log *zap.Logger) *CampaignHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CampaignHandler{campaigns: campaigns, log: log}
}

type createCampaignRequest struct {
	Name    string     `json:"name"`
	Subject string     `json:"subject"`
	Content string     `json:"content"`
	SendAt  *time.Time `json:"sendAt"`
}

// List 返回全部活动
func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.campaigns.List()
	if err != nil {
		h.log.Error("获取活动列表失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	respondOK(c, gin.H{"campaigns": campaigns})
}

// Create 创建活动
func (h *CampaignHandler) Create(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	campaign, err := h.campaigns.Create(service.CreateCampaignInput{
		Name:    req.Name,
		Subject: req.Subject,
		Content: req.Content,
		SendAt:  req.SendAt,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			respondError(c, http.StatusBadRequest, verr.Msg)
			return
		}
		h.log.Error("创建活动失败", zap.Error(err))
		respondError(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	respondOK(c, gin.H{"campaign": campaign})
}

// Send 群发活动
func (h *CampaignHandler) Send(c *gin.Context) {
	campaign, err := h.campaigns.Send(c.Param("id"))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, http.StatusNotFound, MsgCampaignNotFound)
		case errors.As(err, &verr):
			respondError(c, http.StatusBadRequest, verr.Msg)
		default:
			h.log.Error("活动群发失败", zap.Error(err))
			respondError(c, http.StatusInternalServerError, MsgInternalError)
		}
		return
	}

	respondOK(c, gin.H{"campaign": campaign})
}
