package fallback

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/monitoring"
	"leadpage/backend/internal/storage"
)

// 运行模式
const (
	ModeLive    = "live"    // 远端可用，读写走远端
	ModeOffline = "offline" // 远端不可用，读写走本地降级链
)

// Remote 远端权威存储需要额外提供连通性探测
type Remote interface {
	storage.Store
	TestConnection(ctx context.Context) error
}

// Store 三层降级存储
//
// 写入和读取先尝试远端；远端失败后尝试本地文件；文件也失败
// 则落到内存。一旦某次远端操作失败，本会话进入离线模式并保持
// （粘性降级），避免每个请求都等远端超时。
type Store struct {
	remote   Remote
	local    storage.Store
	memory   storage.Store
	timeout  time.Duration
	degraded atomic.Bool
	logger   *zap.Logger
}

// NewStore 创建降级存储。remote 可以为 nil（未配置数据库时）。
func NewStore(remote Remote, local, memory storage.Store, timeout time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		remote:  remote,
		local:   local,
		memory:  memory,
		timeout: timeout,
		logger:  logger,
	}
	if remote == nil {
		s.degraded.Store(true)
	}
	return s
}

// Mode 返回当前运行模式
func (s *Store) Mode() string {
	if s.degraded.Load() {
		return ModeOffline
	}
	return ModeLive
}

// Probe 探测远端连通性并据此设定运行模式
//
// 由登录流程调用一次；探测成功可以把之前降级的会话恢复为实时模式。
func (s *Store) Probe(ctx context.Context) string {
	if s.remote == nil {
		return ModeOffline
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.remote.TestConnection(probeCtx); err != nil {
		s.markDegraded("probe", err)
		return ModeOffline
	}

	s.degraded.Store(false)
	return ModeLive
}

func (s *Store) markDegraded(op string, err error) {
	if s.degraded.CompareAndSwap(false, true) {
		monitoring.StorageFallbacks.Inc()
		s.logger.Warn("远端存储不可用，切换到离线模式",
			zap.String("operation", op),
			zap.Error(err))
	}
}

// withTimeout 在限定时间内执行远端操作
//
// 仓库接口不携带 context，这里用 goroutine + select 限制远端
// 调用的等待时间，超时按远端失败处理。
func (s *Store) withTimeout(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errors.New("remote operation timed out")
	}
}

// isRemoteFailure 区分基础设施故障和业务错误
//
// 业务错误（已存在、未找到）说明远端工作正常，不触发降级，
// 也不再尝试本地层。
func isRemoteFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, storage.ErrLeadExists),
		errors.Is(err, storage.ErrLeadNotFound),
		errors.Is(err, storage.ErrCampaignNotFound),
		errors.Is(err, storage.ErrAutomationNotFound),
		errors.Is(err, storage.ErrAdminNotFound),
		errors.Is(err, storage.ErrSettingsNotFound):
		return false
	default:
		return true
	}
}

// run 按 远端 -> 本地文件 -> 内存 的顺序执行操作
func (s *Store) run(op string, remote func(storage.Store) error) error {
	if s.remote != nil && !s.degraded.Load() {
		err := s.withTimeout(func() error {
			return remote(s.remote)
		})
		if !isRemoteFailure(err) {
			return err
		}
		s.markDegraded(op, err)
	}

	err := remote(s.local)
	if !isRemoteFailure(err) {
		return err
	}
	s.logger.Warn("本地文件存储失败，落到内存存储",
		zap.String("operation", op),
		zap.Error(err))

	return remote(s.memory)
}

// ========== Lead Repository ==========

func (s *Store) SaveLead(lead *domain.Lead) error {
	return s.run("SaveLead", func(st storage.Store) error {
		return st.SaveLead(lead)
	})
}

func (s *Store) GetLeadByEmail(email string) (*domain.Lead, error) {
	var lead *domain.Lead
	err := s.run("GetLeadByEmail", func(st storage.Store) error {
		var err error
		lead, err = st.GetLeadByEmail(email)
		return err
	})
	return lead, err
}

func (s *Store) ListLeads() ([]domain.Lead, error) {
	var leads []domain.Lead
	err := s.run("ListLeads", func(st storage.Store) error {
		var err error
		leads, err = st.ListLeads()
		return err
	})
	return leads, err
}

func (s *Store) CountLeads() (int, error) {
	var count int
	err := s.run("CountLeads", func(st storage.Store) error {
		var err error
		count, err = st.CountLeads()
		return err
	})
	return count, err
}

func (s *Store) DeleteLeadByEmail(email string) error {
	return s.run("DeleteLeadByEmail", func(st storage.Store) error {
		return st.DeleteLeadByEmail(email)
	})
}

// ========== Campaign Repository ==========

func (s *Store) SaveCampaign(campaign *domain.Campaign) error {
	return s.run("SaveCampaign", func(st storage.Store) error {
		return st.SaveCampaign(campaign)
	})
}

func (s *Store) GetCampaign(id string) (*domain.Campaign, error) {
	var campaign *domain.Campaign
	err := s.run("GetCampaign", func(st storage.Store) error {
		var err error
		campaign, err = st.GetCampaign(id)
		return err
	})
	return campaign, err
}

func (s *Store) ListCampaigns() ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := s.run("ListCampaigns", func(st storage.Store) error {
		var err error
		campaigns, err = st.ListCampaigns()
		return err
	})
	return campaigns, err
}

// ========== Template Repository ==========

func (s *Store) ListTemplates() ([]domain.EmailTemplate, error) {
	var templates []domain.EmailTemplate
	err := s.run("ListTemplates", func(st storage.Store) error {
		var err error
		templates, err = st.ListTemplates()
		return err
	})
	return templates, err
}

// ========== Automation Repository ==========

func (s *Store) InsertAutomation(automation *domain.Automation) error {
	return s.run("InsertAutomation", func(st storage.Store) error {
		return st.InsertAutomation(automation)
	})
}

func (s *Store) GetAutomation(id string) (*domain.Automation, error) {
	var automation *domain.Automation
	err := s.run("GetAutomation", func(st storage.Store) error {
		var err error
		automation, err = st.GetAutomation(id)
		return err
	})
	return automation, err
}

func (s *Store) ListAutomations() ([]domain.Automation, error) {
	var automations []domain.Automation
	err := s.run("ListAutomations", func(st storage.Store) error {
		var err error
		automations, err = st.ListAutomations()
		return err
	})
	return automations, err
}

func (s *Store) UpdateAutomation(automation *domain.Automation) error {
	return s.run("UpdateAutomation", func(st storage.Store) error {
		return st.UpdateAutomation(automation)
	})
}

// ========== Admin Repository ==========

func (s *Store) GetAdminAccount() (*domain.AdminAccount, error) {
	var account *domain.AdminAccount
	err := s.run("GetAdminAccount", func(st storage.Store) error {
		var err error
		account, err = st.GetAdminAccount()
		return err
	})
	return account, err
}

func (s *Store) SaveAdminAccount(account *domain.AdminAccount) error {
	return s.run("SaveAdminAccount", func(st storage.Store) error {
		return st.SaveAdminAccount(account)
	})
}

// ========== SMTP Settings Repository ==========

func (s *Store) GetSMTPSettings() (*domain.SMTPSettings, error) {
	var settings *domain.SMTPSettings
	err := s.run("GetSMTPSettings", func(st storage.Store) error {
		var err error
		settings, err = st.GetSMTPSettings()
		return err
	})
	return settings, err
}

func (s *Store) SaveSMTPSettings(settings *domain.SMTPSettings) error {
	return s.run("SaveSMTPSettings", func(st storage.Store) error {
		return st.SaveSMTPSettings(settings)
	})
}

// ========== 工具方法 ==========

// Close 关闭所有底层存储
func (s *Store) Close() error {
	var firstErr error
	if s.remote != nil {
		if err := s.remote.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.local.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.memory.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Health 健康检查：离线模式下只要求本地层可用
func (s *Store) Health() error {
	if s.remote != nil && !s.degraded.Load() {
		return s.remote.Health()
	}
	if err := s.local.Health(); err != nil {
		return s.memory.Health()
	}
	return nil
}
