package storage

import (
	"errors"

	"leadpage/backend/internal/domain"
)

var (
	// ErrStorageUnavailable 后端资源缺失或无法解析
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrLeadNotFound 订阅者未找到错误
	ErrLeadNotFound = errors.New("lead not found")
	// ErrLeadExists 邮箱已订阅错误
	ErrLeadExists = errors.New("lead already exists")
	// ErrCampaignNotFound 活动未找到错误
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrAutomationNotFound 自动化规则未找到错误
	ErrAutomationNotFound = errors.New("automation not found")
	// ErrAdminNotFound 管理员账户未初始化错误
	ErrAdminNotFound = errors.New("admin account not found")
	// ErrSettingsNotFound SMTP 设置未初始化错误
	ErrSettingsNotFound = errors.New("smtp settings not found")
)

// 持久化集合名称，本地文件存储以此命名 JSON 文件
const (
	CollectionLeads       = "leads"
	CollectionCampaigns   = "campaigns"
	CollectionTemplates   = "templates"
	CollectionAutomations = "automations"
	CollectionAdmin       = "admin"
	CollectionSMTP        = "smtp"
)

// LeadRepository 定义订阅者数据存取操作。
type LeadRepository interface {
	SaveLead(lead *domain.Lead) error
	GetLeadByEmail(email string) (*domain.Lead, error)
	ListLeads() ([]domain.Lead, error)
	CountLeads() (int, error)
	DeleteLeadByEmail(email string) error
}

// CampaignRepository 定义活动数据存取操作。
type CampaignRepository interface {
	SaveCampaign(campaign *domain.Campaign) error
	GetCampaign(id string) (*domain.Campaign, error)
	ListCampaigns() ([]domain.Campaign, error)
}

// TemplateRepository 定义邮件模板目录的只读访问。
type TemplateRepository interface {
	ListTemplates() ([]domain.EmailTemplate, error)
}

// AutomationRepository 定义自动化规则数据存取操作。
type AutomationRepository interface {
	// InsertAutomation 将新规则插入展示顺序的头部
	InsertAutomation(automation *domain.Automation) error
	GetAutomation(id string) (*domain.Automation, error)
	ListAutomations() ([]domain.Automation, error)
	UpdateAutomation(automation *domain.Automation) error
}

// AdminRepository 定义单例管理员账户的存取操作。
type AdminRepository interface {
	GetAdminAccount() (*domain.AdminAccount, error)
	SaveAdminAccount(account *domain.AdminAccount) error
}

// SMTPSettingsRepository 定义单例 SMTP 设置的存取操作。
type SMTPSettingsRepository interface {
	GetSMTPSettings() (*domain.SMTPSettings, error)
	SaveSMTPSettings(settings *domain.SMTPSettings) error
}

// Store 定义完整的存储接口。
type Store interface {
	LeadRepository
	CampaignRepository
	TemplateRepository
	AutomationRepository
	AdminRepository
	SMTPSettingsRepository

	// 工具方法
	Close() error
	Health() error
}
