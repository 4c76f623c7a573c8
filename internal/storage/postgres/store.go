package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

// Store 托管数据库存储实现（远端权威存储）
type Store struct {
	db *gorm.DB
}

// NewStore 创建 PostgreSQL 存储实例
func NewStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(postgres.Open(dsn))
}

// NewMySQLStore 创建 MySQL 存储实例
func NewMySQLStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(mysql.Open(dsn))
}

// NewStoreForType 根据数据库类型创建存储实例
func NewStoreForType(dbType, dsn string) (*Store, error) {
	switch dbType {
	case "mysql":
		return NewMySQLStore(dsn)
	case "postgres", "postgresql":
		return NewStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: mysql, postgres)", dbType)
	}
}

// newGormConfig 返回连接配置
//
// TranslateError 必须开启：唯一键冲突要翻译成 gorm.ErrDuplicatedKey
// 才能映射为业务侧的 ErrLeadExists，否则驱动原始错误会被降级
// 逻辑当成基础设施故障。
func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 静默模式
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	}
}

// NewStoreWithDialector 使用指定的GORM dialector创建存储实例
func NewStoreWithDialector(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store := &Store{db: db}

	// 自动迁移数据库表
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate 自动迁移数据库表结构
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.Lead{},
		&domain.Campaign{},
		&domain.EmailTemplate{},
		&domain.Automation{},
		&domain.AdminAccount{},
		&domain.SMTPSettings{},
	)
}

// TestConnection 连通性探测：Ping 并确认 leads 表可查
//
// 在管理员会话开始时调用一次，结果决定本次会话运行在
// 实时模式还是离线模式。
func (s *Store) TestConnection(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", storage.ErrStorageUnavailable, err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Lead{}).Limit(1).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: leads table: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

// ========== Lead Repository ==========

// SaveLead 保存订阅者信息
func (s *Store) SaveLead(lead *domain.Lead) error {
	err := s.db.Create(lead).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return storage.ErrLeadExists
	}
	return err
}

// GetLeadByEmail 根据邮箱获取订阅者
func (s *Store) GetLeadByEmail(email string) (*domain.Lead, error) {
	rows, err := s.selectLeadRows(s.db.Table("leads").Where("email = ?", email).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrLeadNotFound
	}
	lead := normalizeLead(rows[0])
	return &lead, nil
}

// ListLeads 返回全部订阅者
//
// 远端表可能带有历史遗留的列名（uid/lead_id/nome/timestamp），
// 查询结果经 normalize 适配层统一为规范 Lead 形态。
func (s *Store) ListLeads() ([]domain.Lead, error) {
	rows, err := s.selectLeadRows(s.db.Table("leads").Order("created_at"))
	if err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, normalizeLead(row))
	}
	return leads, nil
}

// CountLeads 返回当前订阅者数量
func (s *Store) CountLeads() (int, error) {
	var count int64
	if err := s.db.Model(&domain.Lead{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteLeadByEmail 按邮箱删除订阅者（远端 id 可能为空）
func (s *Store) DeleteLeadByEmail(email string) error {
	result := s.db.Where("email = ?", email).Delete(&domain.Lead{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrLeadNotFound
	}
	return nil
}

// selectLeadRows 以原始行形式查询，供 normalize 适配层消费
func (s *Store) selectLeadRows(tx *gorm.DB) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ========== Campaign Repository ==========

// SaveCampaign 新建或更新活动
func (s *Store) SaveCampaign(campaign *domain.Campaign) error {
	return s.db.Save(campaign).Error
}

// GetCampaign 根据 ID 获取活动
func (s *Store) GetCampaign(id string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := s.db.Where("id = ?", id).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// ListCampaigns 返回全部活动（按创建时间）
func (s *Store) ListCampaigns() ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	if err := s.db.Order("created_at").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ========== Template Repository ==========

// ListTemplates 返回邮件模板目录
func (s *Store) ListTemplates() ([]domain.EmailTemplate, error) {
	var templates []domain.EmailTemplate
	if err := s.db.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// ========== Automation Repository ==========

// InsertAutomation 插入新规则（列表按创建时间倒序，等效头部插入）
func (s *Store) InsertAutomation(automation *domain.Automation) error {
	return s.db.Create(automation).Error
}

// GetAutomation 根据 ID 获取自动化规则
func (s *Store) GetAutomation(id string) (*domain.Automation, error) {
	var automation domain.Automation
	err := s.db.Where("id = ?", id).First(&automation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrAutomationNotFound
		}
		return nil, err
	}
	return &automation, nil
}

// ListAutomations 返回全部自动化规则（新建在前）
func (s *Store) ListAutomations() ([]domain.Automation, error) {
	var automations []domain.Automation
	if err := s.db.Order("created_at DESC").Find(&automations).Error; err != nil {
		return nil, err
	}
	return automations, nil
}

// UpdateAutomation 覆盖已存在的自动化规则
func (s *Store) UpdateAutomation(automation *domain.Automation) error {
	result := s.db.Model(&domain.Automation{}).Where("id = ?", automation.ID).Updates(map[string]interface{}{
		"name":             automation.Name,
		"active":           automation.Active,
		"template_subject": automation.EmailTemplate.Subject,
		"template_content": automation.EmailTemplate.Content,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrAutomationNotFound
	}
	return nil
}

// ========== Admin Repository ==========

// GetAdminAccount 获取单例管理员账户
func (s *Store) GetAdminAccount() (*domain.AdminAccount, error) {
	var account domain.AdminAccount
	err := s.db.First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrAdminNotFound
		}
		return nil, err
	}
	return &account, nil
}

// SaveAdminAccount 保存单例管理员账户
func (s *Store) SaveAdminAccount(account *domain.AdminAccount) error {
	return s.db.Save(account).Error
}

// ========== SMTP Settings Repository ==========

// GetSMTPSettings 获取单例 SMTP 设置
func (s *Store) GetSMTPSettings() (*domain.SMTPSettings, error) {
	var settings domain.SMTPSettings
	err := s.db.First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// SaveSMTPSettings 保存单例 SMTP 设置
func (s *Store) SaveSMTPSettings(settings *domain.SMTPSettings) error {
	settings.ID = 1
	return s.db.Save(settings).Error
}

// ========== 工具方法 ==========

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 健康检查
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
