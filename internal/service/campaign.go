package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/mailer"
	"leadpage/backend/internal/monitoring"
	"leadpage/backend/internal/pool"
	"leadpage/backend/internal/security"
	"leadpage/backend/internal/storage"
)

// CampaignService 活动服务
type CampaignService struct {
	store   storage.Store
	sender  mailer.Sender
	workers *pool.WorkerPool
	filter  *security.HTMLFilter
	logger  *zap.Logger
}

// NewCampaignService 创建活动服务
func NewCampaignService(store storage.Store, sender mailer.Sender, workers *pool.WorkerPool, logger *zap.Logger) *CampaignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{
		store:   store,
		sender:  sender,
		workers: workers,
		filter:  security.NewHTMLFilter(),
		logger:  logger,
	}
}

// CreateCampaignInput 创建活动的输入参数
type CreateCampaignInput struct {
	Name    string
	Subject string
	Content string
	SendAt  *time.Time
}

// Create 创建活动
//
// 带 sendAt 的活动进入 scheduled 状态，否则为 draft。
func (s *CampaignService) Create(input CreateCampaignInput) (*domain.Campaign, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Subject = strings.TrimSpace(input.Subject)
	if input.Name == "" {
		return nil, newValidationError("name", "Nome é obrigatório")
	}
	if input.Subject == "" {
		return nil, newValidationError("subject", "Assunto é obrigatório")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, newValidationError("content", "Conteúdo é obrigatório")
	}
	if ok, reason := s.filter.Check(input.Content); !ok {
		s.logger.Warn("活动正文被内容过滤器拦截", zap.String("pattern", reason))
		return nil, newValidationError("content", "Conteúdo contém elementos não permitidos")
	}

	status := domain.CampaignDraft
	if input.SendAt != nil {
		status = domain.CampaignScheduled
	}

	campaign := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Subject:   input.Subject,
		Content:   input.Content,
		SendAt:    input.SendAt,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveCampaign(campaign); err != nil {
		return nil, fmt.Errorf("save campaign: %w", err)
	}
	return campaign, nil
}

// List 返回全部活动
func (s *CampaignService) List() ([]domain.Campaign, error) {
	return s.store.ListCampaigns()
}

// Get 根据 ID 获取活动
func (s *CampaignService) Get(id string) (*domain.Campaign, error) {
	campaign, err := s.store.GetCampaign(id)
	if err == storage.ErrCampaignNotFound {
		return nil, ErrNotFound
	}
	return campaign, err
}

// Send 群发活动
//
// 状态立即流转为 sent 并记录快照时刻的收件人数；邮件投递
// 通过协程池异步进行，投递失败不回滚状态。
func (s *CampaignService) Send(id string) (*domain.Campaign, error) {
	campaign, err := s.store.GetCampaign(id)
	if err != nil {
		if err == storage.ErrCampaignNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !campaign.CanSend() {
		return nil, newValidationError("status",
			fmt.Sprintf("Campanha com status %q não pode ser enviada", campaign.Status))
	}

	leads, err := s.store.ListLeads()
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	now := time.Now().UTC()
	count := len(leads)
	campaign.Status = domain.CampaignSent
	campaign.SentAt = &now
	campaign.SentToCount = &count

	if err := s.store.SaveCampaign(campaign); err != nil {
		return nil, fmt.Errorf("save campaign: %w", err)
	}

	monitoring.CampaignsSent.Inc()
	s.logger.Info("活动开始群发",
		zap.String("campaignId", campaign.ID),
		zap.Int("recipients", count))

	s.dispatch(campaign, leads)

	return campaign, nil
}

// dispatch 把群发任务逐个投递到协程池
func (s *CampaignService) dispatch(campaign *domain.Campaign, leads []domain.Lead) {
	subject := campaign.Subject
	content := campaign.Content

	for _, lead := range leads {
		to := lead.Email
		body := mailer.RenderTemplate(content, lead.Name)

		s.workers.Submit("campaign-email", func() {
			if err := s.sender.Send(to, subject, body); err != nil {
				s.logger.Warn("活动邮件发送失败",
					zap.String("campaignId", campaign.ID),
					zap.String("to", to),
					zap.Error(err))
				return
			}
			monitoring.CampaignEmailsSent.Inc()
		})
	}
}
