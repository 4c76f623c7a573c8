package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

// Store 本地 JSON 文件存储实现
//
// 每个集合对应一个 UTF-8 JSON 文件，读-改-写整个文件。
// 同一集合的并发写以互斥锁串行化，避免丢失更新。
type Store struct {
	basePath string
	locks    map[string]*sync.Mutex // collection -> 互斥锁
}

// NewStore 创建文件存储实例并确保数据目录存在
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	locks := make(map[string]*sync.Mutex)
	for _, collection := range []string{
		storage.CollectionLeads,
		storage.CollectionCampaigns,
		storage.CollectionTemplates,
		storage.CollectionAutomations,
		storage.CollectionAdmin,
		storage.CollectionSMTP,
	} {
		locks[collection] = &sync.Mutex{}
	}

	return &Store{basePath: basePath, locks: locks}, nil
}

// Initialize 仅在集合文件缺失时写入默认内容（幂等）
func (s *Store) Initialize(collection string, defaultValue interface{}) error {
	lock := s.locks[collection]
	lock.Lock()
	defer lock.Unlock()

	path := s.path(collection)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return s.write(collection, defaultValue)
}

// path 获取集合文件路径，格式: {base}/{collection}.json
func (s *Store) path(collection string) string {
	return filepath.Join(s.basePath, collection+".json")
}

// read 读取并解析集合文件；文件缺失或损坏返回 ErrStorageUnavailable
func (s *Store) read(collection string, out interface{}) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", storage.ErrStorageUnavailable, collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: parse %s: %v", storage.ErrStorageUnavailable, collection, err)
	}
	return nil
}

// write 整体替换集合文件，先写临时文件再重命名
func (s *Store) write(collection string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", collection, err)
	}

	path := s.path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", storage.ErrStorageUnavailable, collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", storage.ErrStorageUnavailable, collection, err)
	}
	return nil
}

// ========== Lead Repository ==========

// SaveLead 追加订阅者记录。
func (s *Store) SaveLead(lead *domain.Lead) error {
	lock := s.locks[storage.CollectionLeads]
	lock.Lock()
	defer lock.Unlock()

	var leads []domain.Lead
	if err := s.read(storage.CollectionLeads, &leads); err != nil {
		return err
	}

	for _, existing := range leads {
		if existing.Email == lead.Email {
			return storage.ErrLeadExists
		}
	}

	leads = append(leads, *lead)
	return s.write(storage.CollectionLeads, leads)
}

// GetLeadByEmail 根据邮箱获取订阅者。
func (s *Store) GetLeadByEmail(email string) (*domain.Lead, error) {
	var leads []domain.Lead
	if err := s.read(storage.CollectionLeads, &leads); err != nil {
		return nil, err
	}

	for i := range leads {
		if leads[i].Email == email {
			return &leads[i], nil
		}
	}
	return nil, storage.ErrLeadNotFound
}

// ListLeads 返回全部订阅者（文件顺序）。
func (s *Store) ListLeads() ([]domain.Lead, error) {
	var leads []domain.Lead
	if err := s.read(storage.CollectionLeads, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// CountLeads 返回当前订阅者数量。
func (s *Store) CountLeads() (int, error) {
	leads, err := s.ListLeads()
	if err != nil {
		return 0, err
	}
	return len(leads), nil
}

// DeleteLeadByEmail 按邮箱删除订阅者。
func (s *Store) DeleteLeadByEmail(email string) error {
	lock := s.locks[storage.CollectionLeads]
	lock.Lock()
	defer lock.Unlock()

	var leads []domain.Lead
	if err := s.read(storage.CollectionLeads, &leads); err != nil {
		return err
	}

	found := false
	out := leads[:0]
	for _, lead := range leads {
		if lead.Email == email {
			found = true
			continue
		}
		out = append(out, lead)
	}
	if !found {
		return storage.ErrLeadNotFound
	}

	return s.write(storage.CollectionLeads, out)
}

// ========== Campaign Repository ==========

// SaveCampaign 新建或更新活动。
func (s *Store) SaveCampaign(campaign *domain.Campaign) error {
	lock := s.locks[storage.CollectionCampaigns]
	lock.Lock()
	defer lock.Unlock()

	var campaigns []domain.Campaign
	if err := s.read(storage.CollectionCampaigns, &campaigns); err != nil {
		return err
	}

	updated := false
	for i := range campaigns {
		if campaigns[i].ID == campaign.ID {
			campaigns[i] = *campaign
			updated = true
			break
		}
	}
	if !updated {
		campaigns = append(campaigns, *campaign)
	}

	return s.write(storage.CollectionCampaigns, campaigns)
}

// GetCampaign 根据 ID 获取活动。
func (s *Store) GetCampaign(id string) (*domain.Campaign, error) {
	var campaigns []domain.Campaign
	if err := s.read(storage.CollectionCampaigns, &campaigns); err != nil {
		return nil, err
	}

	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i], nil
		}
	}
	return nil, storage.ErrCampaignNotFound
}

// ListCampaigns 返回全部活动（文件顺序）。
func (s *Store) ListCampaigns() ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	if err := s.read(storage.CollectionCampaigns, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ========== Template Repository ==========

// ListTemplates 返回邮件模板目录。
func (s *Store) ListTemplates() ([]domain.EmailTemplate, error) {
	var templates []domain.EmailTemplate
	if err := s.read(storage.CollectionTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// ========== Automation Repository ==========

// InsertAutomation 将新规则插入文件头部。
func (s *Store) InsertAutomation(automation *domain.Automation) error {
	lock := s.locks[storage.CollectionAutomations]
	lock.Lock()
	defer lock.Unlock()

	var automations []domain.Automation
	if err := s.read(storage.CollectionAutomations, &automations); err != nil {
		return err
	}

	automations = append([]domain.Automation{*automation}, automations...)
	return s.write(storage.CollectionAutomations, automations)
}

// GetAutomation 根据 ID 获取自动化规则。
func (s *Store) GetAutomation(id string) (*domain.Automation, error) {
	var automations []domain.Automation
	if err := s.read(storage.CollectionAutomations, &automations); err != nil {
		return nil, err
	}

	for i := range automations {
		if automations[i].ID == id {
			return &automations[i], nil
		}
	}
	return nil, storage.ErrAutomationNotFound
}

// ListAutomations 返回全部自动化规则（文件顺序）。
func (s *Store) ListAutomations() ([]domain.Automation, error) {
	var automations []domain.Automation
	if err := s.read(storage.CollectionAutomations, &automations); err != nil {
		return nil, err
	}
	return automations, nil
}

// UpdateAutomation 覆盖已存在的自动化规则。
func (s *Store) UpdateAutomation(automation *domain.Automation) error {
	lock := s.locks[storage.CollectionAutomations]
	lock.Lock()
	defer lock.Unlock()

	var automations []domain.Automation
	if err := s.read(storage.CollectionAutomations, &automations); err != nil {
		return err
	}

	for i := range automations {
		if automations[i].ID == automation.ID {
			automations[i] = *automation
			return s.write(storage.CollectionAutomations, automations)
		}
	}
	return storage.ErrAutomationNotFound
}

// ========== Admin Repository ==========

// GetAdminAccount 获取单例管理员账户。
func (s *Store) GetAdminAccount() (*domain.AdminAccount, error) {
	var account domain.AdminAccount
	if err := s.read(storage.CollectionAdmin, &account); err != nil {
		return nil, err
	}
	if account.Email == "" {
		return nil, storage.ErrAdminNotFound
	}
	return &account, nil
}

// SaveAdminAccount 保存单例管理员账户。
func (s *Store) SaveAdminAccount(account *domain.AdminAccount) error {
	lock := s.locks[storage.CollectionAdmin]
	lock.Lock()
	defer lock.Unlock()

	return s.write(storage.CollectionAdmin, account)
}

// ========== SMTP Settings Repository ==========

// GetSMTPSettings 获取单例 SMTP 设置。
func (s *Store) GetSMTPSettings() (*domain.SMTPSettings, error) {
	var settings domain.SMTPSettings
	if err := s.read(storage.CollectionSMTP, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSMTPSettings 保存单例 SMTP 设置。
func (s *Store) SaveSMTPSettings(settings *domain.SMTPSettings) error {
	lock := s.locks[storage.CollectionSMTP]
	lock.Lock()
	defer lock.Unlock()

	return s.write(storage.CollectionSMTP, settings)
}

// ========== 工具方法 ==========

// Close 关闭存储（文件实现为空操作）。
func (s *Store) Close() error {
	return nil
}

// Health 健康检查：验证各集合文件仍可解析。
func (s *Store) Health() error {
	var leads []domain.Lead
	if err := s.read(storage.CollectionLeads, &leads); err != nil {
		return err
	}
	return nil
}
