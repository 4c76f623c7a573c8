package health

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"leadpage/backend/internal/storage"
)

// Checker 健康检查器
type Checker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
}

// modeReporter 由降级存储实现，汇报当前运行模式
type modeReporter interface {
	Mode() string
}

// NewChecker 创建健康检查器
func NewChecker(store storage.Store, logger *zap.Logger) *Checker {
	c := &Checker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}
	c.addChecks()
	return c
}

// addChecks 注册存活与就绪检查
func (c *Checker) addChecks() {
	// 存储层可用（降级存储在离线模式下仍视为可用）
	c.health.AddLivenessCheck("storage", func() error {
		return c.store.Health()
	})

	// 就绪：存储可读即可服务请求
	c.health.AddReadinessCheck("storage", func() error {
		_, err := c.store.CountLeads()
		return err
	})
}

// Handler 返回健康检查处理器（/live 与 /ready）
func (c *Checker) Handler() http.Handler {
	return c.health
}

// Mode 返回存储运行模式，非降级存储固定为 live
func (c *Checker) Mode() string {
	if reporter, ok := c.store.(modeReporter); ok {
		return reporter.Mode()
	}
	return "live"
}
