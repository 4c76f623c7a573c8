package service

import (
	"fmt"
	"strconv"
	"strings"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/mailer"
	"leadpage/backend/internal/storage"
)

// SMTPService SMTP 设置服务
type SMTPService struct {
	store  storage.SMTPSettingsRepository
	sender mailer.Sender
}

// NewSMTPService 创建 SMTP 设置服务
func NewSMTPService(store storage.SMTPSettingsRepository, sender mailer.Sender) *SMTPService {
	return &SMTPService{store: store, sender: sender}
}

// Get 返回当前设置（密码字段已脱敏）
func (s *SMTPService) Get() (*domain.SMTPSettings, error) {
	settings, err := s.store.GetSMTPSettings()
	if err != nil {
		if err == storage.ErrSettingsNotFound {
			return &domain.SMTPSettings{Port: "587"}, nil
		}
		return nil, err
	}
	sanitized := settings.Sanitized()
	return &sanitized, nil
}

// Save 校验并保存设置
//
// 密码为空时保留已存的密码，支持设置页只改其它字段。
func (s *SMTPService) Save(settings domain.SMTPSettings) error {
	settings.Host = strings.TrimSpace(settings.Host)
	settings.Port = strings.TrimSpace(settings.Port)
	if settings.Host == "" {
		return newValidationError("host", "Servidor SMTP é obrigatório")
	}
	if settings.Port == "" {
		settings.Port = "587"
	}
	if _, err := strconv.Atoi(settings.Port); err != nil {
		return newValidationError("port", fmt.Sprintf("Porta inválida: %q", settings.Port))
	}

	if settings.Password == "" {
		if existing, err := s.store.GetSMTPSettings(); err == nil {
			settings.Password = existing.Password
		}
	}

	return s.store.SaveSMTPSettings(&settings)
}

// Test 用提交的设置建立一条 SMTP 连接
//
// 测试的是表单当前内容而非已保存的配置，保存前就能验证。
// 密码为空时沿用已存密码，与 Save 的语义一致。
func (s *SMTPService) Test(settings domain.SMTPSettings) error {
	settings.Host = strings.TrimSpace(settings.Host)
	settings.Port = strings.TrimSpace(settings.Port)
	if settings.Host == "" {
		return newValidationError("host", "Servidor SMTP é obrigatório")
	}
	if settings.Port == "" {
		settings.Port = "587"
	}
	if _, err := strconv.Atoi(settings.Port); err != nil {
		return newValidationError("port", fmt.Sprintf("Porta inválida: %q", settings.Port))
	}

	if settings.Password == "" {
		if existing, err := s.store.GetSMTPSettings(); err == nil {
			settings.Password = existing.Password
		}
	}

	return s.sender.TestConnection(settings)
}
