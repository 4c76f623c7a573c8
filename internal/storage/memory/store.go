package memory

import (
	"sync"
	"time"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

// Store 使用内存保存全部集合，用于开发验证和离线兜底。
type Store struct {
	mu          sync.RWMutex
	leads       []*domain.Lead
	byEmail     map[string]*domain.Lead       // email -> lead
	campaigns   []*domain.Campaign
	byID        map[string]*domain.Campaign   // campaignID -> campaign
	templates   []domain.EmailTemplate
	automations []*domain.Automation          // 展示顺序，新建规则在头部
	byAutoID    map[string]*domain.Automation // automationID -> automation
	admin       *domain.AdminAccount
	smtp        *domain.SMTPSettings
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		byEmail:  make(map[string]*domain.Lead),
		byID:     make(map[string]*domain.Campaign),
		byAutoID: make(map[string]*domain.Automation),
	}
}

// SeedDemoData 注入演示数据，仅在远端与本地文件都不可用时使用。
func (s *Store) SeedDemoData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	demoLeads := []*domain.Lead{
		{ID: "1", Name: "Maria Silva", Email: "maria.silva@example.com", CreatedAt: mustParse("2025-04-20T10:30:00Z")},
		{ID: "2", Name: "João Santos", Email: "joao.santos@example.com", CreatedAt: mustParse("2025-04-18T14:45:00Z")},
		{ID: "3", Name: "Ana Oliveira", Email: "ana.oliveira@example.com", CreatedAt: mustParse("2025-04-15T09:15:00Z")},
	}
	for _, lead := range demoLeads {
		if _, ok := s.byEmail[lead.Email]; ok {
			continue
		}
		s.leads = append(s.leads, lead)
		s.byEmail[lead.Email] = lead
	}

	for _, auto := range domain.DefaultAutomations() {
		if _, ok := s.byAutoID[auto.ID]; ok {
			continue
		}
		copied := auto
		s.automations = append(s.automations, &copied)
		s.byAutoID[copied.ID] = &copied
	}
}

func mustParse(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

// ========== Lead Repository ==========

// SaveLead 保存订阅者信息。
func (s *Store) SaveLead(lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[lead.Email]; ok {
		return storage.ErrLeadExists
	}

	copied := *lead
	s.leads = append(s.leads, &copied)
	s.byEmail[copied.Email] = &copied
	return nil
}

// GetLeadByEmail 根据邮箱获取订阅者。
func (s *Store) GetLeadByEmail(email string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// ListLeads 返回全部订阅者的快照（插入顺序）。
func (s *Store) ListLeads() ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		out = append(out, *lead)
	}
	return out, nil
}

// CountLeads 返回当前订阅者数量。
func (s *Store) CountLeads() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads), nil
}

// DeleteLeadByEmail 按邮箱删除订阅者。
func (s *Store) DeleteLeadByEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; !ok {
		return storage.ErrLeadNotFound
	}
	delete(s.byEmail, email)
	for i, lead := range s.leads {
		if lead.Email == email {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			break
		}
	}
	return nil
}

// ========== Campaign Repository ==========

// SaveCampaign 新建或更新活动。
func (s *Store) SaveCampaign(campaign *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *campaign
	if existing, ok := s.byID[copied.ID]; ok {
		*existing = copied
		return nil
	}
	s.campaigns = append(s.campaigns, &copied)
	s.byID[copied.ID] = &copied
	return nil
}

// GetCampaign 根据 ID 获取活动。
func (s *Store) GetCampaign(id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	campaign, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrCampaignNotFound
	}
	copied := *campaign
	return &copied, nil
}

// ListCampaigns 返回全部活动的快照（插入顺序）。
func (s *Store) ListCampaigns() ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Campaign, 0, len(s.campaigns))
	for _, campaign := range s.campaigns {
		out = append(out, *campaign)
	}
	return out, nil
}

// ========== Template Repository ==========

// ListTemplates 返回邮件模板目录。
func (s *Store) ListTemplates() ([]domain.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EmailTemplate, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

// SetTemplates 替换模板目录（初始化用）。
func (s *Store) SetTemplates(templates []domain.EmailTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append([]domain.EmailTemplate(nil), templates...)
}

// ========== Automation Repository ==========

// InsertAutomation 将新规则插入展示顺序头部。
func (s *Store) InsertAutomation(automation *domain.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *automation
	s.automations = append([]*domain.Automation{&copied}, s.automations...)
	s.byAutoID[copied.ID] = &copied
	return nil
}

// GetAutomation 根据 ID 获取自动化规则。
func (s *Store) GetAutomation(id string) (*domain.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	automation, ok := s.byAutoID[id]
	if !ok {
		return nil, storage.ErrAutomationNotFound
	}
	copied := *automation
	return &copied, nil
}

// ListAutomations 返回全部自动化规则（新建在前）。
func (s *Store) ListAutomations() ([]domain.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Automation, 0, len(s.automations))
	for _, automation := range s.automations {
		out = append(out, *automation)
	}
	return out, nil
}

// UpdateAutomation 覆盖已存在的自动化规则。
func (s *Store) UpdateAutomation(automation *domain.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byAutoID[automation.ID]
	if !ok {
		return storage.ErrAutomationNotFound
	}
	*existing = *automation
	return nil
}

// ========== Admin Repository ==========

// GetAdminAccount 获取单例管理员账户。
func (s *Store) GetAdminAccount() (*domain.AdminAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.admin == nil {
		return nil, storage.ErrAdminNotFound
	}
	copied := *s.admin
	return &copied, nil
}

// SaveAdminAccount 保存单例管理员账户。
func (s *Store) SaveAdminAccount(account *domain.AdminAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *account
	s.admin = &copied
	return nil
}

// ========== SMTP Settings Repository ==========

// GetSMTPSettings 获取单例 SMTP 设置。
func (s *Store) GetSMTPSettings() (*domain.SMTPSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.smtp == nil {
		return nil, storage.ErrSettingsNotFound
	}
	copied := *s.smtp
	return &copied, nil
}

// SaveSMTPSettings 保存单例 SMTP 设置。
func (s *Store) SaveSMTPSettings(settings *domain.SMTPSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *settings
	s.smtp = &copied
	return nil
}

// ========== 工具方法 ==========

// Close 关闭存储（内存实现为空操作）。
func (s *Store) Close() error {
	return nil
}

// Health 健康检查（内存实现恒为健康）。
func (s *Store) Health() error {
	return nil
}
