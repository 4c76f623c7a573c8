package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"leadpage/backend/internal/auth"
	jwtpkg "leadpage/backend/internal/auth/jwt"
	"leadpage/backend/internal/config"
	"leadpage/backend/internal/health"
	"leadpage/backend/internal/middleware"
	"leadpage/backend/internal/monitoring"
	"leadpage/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config      *config.Config
	Leads       *service.LeadService
	Campaigns   *service.CampaignService
	Automations *service.AutomationService
	Templates   *service.TemplateService
	SMTP        *service.SMTPService
	Auth        *auth.Service
	JWTManager  *jwtpkg.Manager
	Health      *health.Checker
	Logger      *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.BodySizeLimit(1 * 1024 * 1024))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	leadHandler := NewLeadHandler(deps.Leads, deps.Logger)
	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	campaignHandler := NewCampaignHandler(deps.Campaigns, deps.Logger)
	automationHandler := NewAutomationHandler(deps.Automations, deps.Logger)
	templateHandler := NewTemplateHandler(deps.Templates, deps.Logger)
	settingsHandler := NewSettingsHandler(deps.SMTP, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	subscribeLimit := middleware.NewIPRateLimiter(
		rate.Limit(deps.Config.RateLimit.PerSecond),
		deps.Config.RateLimit.Burst,
	)

	// 健康检查与指标
	router.GET("/health", gin.WrapH(deps.Health.Handler()))
	router.GET("/metrics", gin.WrapH(monitoring.HTTPHandler()))

	// ========== 公开端点 ==========
	// 落地页两个历史路径都在用
	router.POST("/subscribe", subscribeLimit.Middleware(), leadHandler.Subscribe)
	router.POST("/api/subscribe", subscribeLimit.Middleware(), leadHandler.Subscribe)

	api := router.Group("/api")
	{
		api.POST("/login", authHandler.Login)
		api.POST("/recover-password", authHandler.RecoverPassword)

		// ========== 管理端点（需要认证） ==========
		admin := api.Group("", jwtAuth.RequireAdmin())
		{
			admin.GET("/leads", leadHandler.List)
			admin.DELETE("/leads", leadHandler.Delete)
			admin.GET("/leads/export", leadHandler.ExportCSV)

			admin.GET("/campaigns", campaignHandler.List)
			admin.POST("/campaigns", campaignHandler.Create)
			admin.POST("/campaigns/:id/send", campaignHandler.Send)

			admin.GET("/templates", templateHandler.List)

			admin.GET("/automations", automationHandler.List)
			admin.POST("/automations", automationHandler.Create)
			admin.PUT("/automations/:id", automationHandler.Update)

			admin.GET("/settings/smtp", settingsHandler.GetSMTP)
			admin.POST("/settings/smtp", settingsHandler.SaveSMTP)
			admin.POST("/settings/smtp/test", settingsHandler.TestSMTP)

			admin.GET("/status", func(c *gin.Context) {
				respondOK(c, gin.H{"mode": deps.Health.Mode()})
			})
		}
	}

	return router
}
