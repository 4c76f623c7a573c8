package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"leadpage/backend/internal/domain"
)

// ErrNotConfigured SMTP 尚未配置时的发送错误
var ErrNotConfigured = errors.New("smtp settings not configured")

// Sender 邮件发送接口
type Sender interface {
	// Send 发送一封 HTML 邮件
	Send(to, subject, htmlBody string) error
	// TestConnection 验证给定的 SMTP 配置可以建立连接
	TestConnection(settings domain.SMTPSettings) error
}

// Mailer 基于 gomail 的 SMTP 发送器
//
// 配置来自设置页，可在运行时更新；未配置时发送行为降级为
// 仅记录日志，保证订阅流程不被邮件基础设施阻塞。
type Mailer struct {
	settings func() (*domain.SMTPSettings, error)
	logger   *zap.Logger
}

// New 创建发送器。settings 在每次发送时求值，设置更新即时生效。
func New(settings func() (*domain.SMTPSettings, error), logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{settings: settings, logger: logger}
}

// Send 发送 HTML 邮件；SMTP 未配置时只记录日志并返回 nil
func (m *Mailer) Send(to, subject, htmlBody string) error {
	settings, err := m.settings()
	if err != nil || settings == nil || !settings.Configured() {
		m.logger.Info("SMTP 未配置，跳过邮件发送",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	dialer, err := newDialer(settings)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", settings.SenderEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	m.logger.Info("邮件已发送",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// TestConnection 用传入的配置建立并立即关闭一条 SMTP 连接
//
// 设置页的“测试连接”发送的是表单当前内容，可能尚未保存，
// 所以这里不读取已保存的配置。
func (m *Mailer) TestConnection(settings domain.SMTPSettings) error {
	if !settings.Configured() {
		return ErrNotConfigured
	}

	dialer, err := newDialer(&settings)
	if err != nil {
		return err
	}

	closer, err := dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp connection failed: %w", err)
	}
	return closer.Close()
}

func newDialer(settings *domain.SMTPSettings) (*gomail.Dialer, error) {
	port, err := strconv.Atoi(strings.TrimSpace(settings.Port))
	if err != nil {
		return nil, fmt.Errorf("invalid smtp port %q: %w", settings.Port, err)
	}

	dialer := gomail.NewDialer(settings.Host, port, settings.User, settings.Password)
	if settings.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: settings.Host}
	}
	return dialer, nil
}

// RenderTemplate 把订阅者信息代入模板占位符
//
// 历史模板同时存在 {{name}} 和 {name} 两种写法，两种都替换。
func RenderTemplate(content, name string) string {
	content = strings.ReplaceAll(content, "{{name}}", name)
	content = strings.ReplaceAll(content, "{name}", name)
	return content
}
