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
	"leadpage/backend/internal/storage"
)

// LeadService 订阅者服务
type LeadService struct {
	store       storage.Store
	automations storage.AutomationRepository
	sender      mailer.Sender
	workers     *pool.WorkerPool
	logger      *zap.Logger
}

// NewLeadService 创建订阅者服务
func NewLeadService(store storage.Store, sender mailer.Sender, workers *pool.WorkerPool, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		store:       store,
		automations: store,
		sender:      sender,
		workers:     workers,
		logger:      logger,
	}
}

// SubscribeResult 订阅结果
type SubscribeResult struct {
	LeadID            string
	AlreadySubscribed bool
}

// Subscribe 处理落地页的订阅请求
//
// 同一邮箱重复订阅是幂等的：返回成功且不重复触发自动化。
// 欢迎邮件是尽力而为的副作用，失败不影响订阅本身。
func (s *LeadService) Subscribe(email, name string) (*SubscribeResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, newValidationError("email", "Email é obrigatório")
	}

	if existing, err := s.store.GetLeadByEmail(email); err == nil && existing != nil {
		return &SubscribeResult{
			LeadID:            existing.ID,
			AlreadySubscribed: true,
		}, nil
	}

	lead := &domain.Lead{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveLead(lead); err != nil {
		if err == storage.ErrLeadExists {
			// 并发订阅同一邮箱时的兜底
			if existing, getErr := s.store.GetLeadByEmail(email); getErr == nil {
				return &SubscribeResult{LeadID: existing.ID, AlreadySubscribed: true}, nil
			}
			return &SubscribeResult{AlreadySubscribed: true}, nil
		}
		return nil, fmt.Errorf("save lead: %w", err)
	}

	monitoring.LeadsCaptured.Inc()
	s.logger.Info("新订阅者",
		zap.String("leadId", lead.ID),
		zap.String("email", lead.Email))

	s.triggerNewLeadAutomation(lead)

	return &SubscribeResult{LeadID: lead.ID}, nil
}

// triggerNewLeadAutomation 对新订阅触发一次欢迎自动化
func (s *LeadService) triggerNewLeadAutomation(lead *domain.Lead) {
	automations, err := s.automations.ListAutomations()
	if err != nil {
		s.logger.Warn("读取自动化规则失败，跳过欢迎邮件", zap.Error(err))
		return
	}

	for _, automation := range automations {
		if !automation.Active || automation.Trigger != domain.TriggerNewLead {
			continue
		}

		subject := automation.EmailTemplate.Subject
		body := mailer.RenderTemplate(automation.EmailTemplate.Content, lead.Name)
		to := lead.Email

		s.workers.TrySubmit("welcome-email", func() {
			if err := s.sender.Send(to, subject, body); err != nil {
				s.logger.Warn("欢迎邮件发送失败",
					zap.String("to", to),
					zap.Error(err))
				return
			}
			monitoring.AutomationEmailsSent.Inc()
		})
		return
	}
}

// List 返回全部订阅者
func (s *LeadService) List() ([]domain.Lead, error) {
	return s.store.ListLeads()
}

// Count 返回订阅者数量
func (s *LeadService) Count() (int, error) {
	return s.store.CountLeads()
}

// DeleteByEmail 按邮箱删除订阅者
//
// 远端遗留记录的 id 可能为空，所以删除以邮箱为键。
func (s *LeadService) DeleteByEmail(email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return newValidationError("email", "Email é obrigatório")
	}

	err := s.store.DeleteLeadByEmail(email)
	if err == storage.ErrLeadNotFound {
		return ErrNotFound
	}
	if err == nil {
		monitoring.LeadsDeleted.Inc()
	}
	return err
}

// ExportCSV 导出订阅者列表为 CSV
//
// 表头和日期格式与既有后台的下载文件保持一致：
// 日期是 dd/mm/yyyy，姓名无条件加引号（内部引号成对转义）。
func (s *LeadService) ExportCSV() ([]byte, error) {
	leads, err := s.store.ListLeads()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("ID,Nome,Email,Data de Inscrição\n")
	for _, lead := range leads {
		name := strings.ReplaceAll(lead.Name, `"`, `""`)
		date := ""
		if !lead.CreatedAt.IsZero() {
			date = lead.CreatedAt.Format("02/01/2006")
		}
		fmt.Fprintf(&b, "%s,\"%s\",%s,%s\n", lead.ID, name, lead.Email, date)
	}
	return []byte(b.String()), nil
}
