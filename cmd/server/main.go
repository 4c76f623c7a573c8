package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadpage/backend/internal/auth"
	jwtpkg "leadpage/backend/internal/auth/jwt"
	"leadpage/backend/internal/config"
	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/health"
	"leadpage/backend/internal/logger"
	"leadpage/backend/internal/mailer"
	"leadpage/backend/internal/pool"
	"leadpage/backend/internal/service"
	"leadpage/backend/internal/storage"
	"leadpage/backend/internal/storage/fallback"
	"leadpage/backend/internal/storage/file"
	"leadpage/backend/internal/storage/memory"
	"leadpage/backend/internal/storage/postgres"
	httptransport "leadpage/backend/internal/transport/http"
)

// main 启动落地页后端 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting leadpage server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层：远端(可选) -> 本地文件 -> 内存
	store := buildStore(cfg, log)
	defer store.Close()

	// 邮件发送器：配置来自设置页，随保存即时生效
	sender := mailer.New(store.GetSMTPSettings, log)

	// 邮件派发协程池
	workers := pool.NewWorkerPool(cfg.Mail.Workers, cfg.Mail.QueueSize, log)

	// 服务层
	leadService := service.NewLeadService(store, sender, workers, log)
	campaignService := service.NewCampaignService(store, sender, workers, log)
	automationService := service.NewAutomationService(store)
	templateService := service.NewTemplateService(store)
	smtpService := service.NewSMTPService(store, sender)

	// 认证
	jwtManager := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	authService := auth.NewService(store, jwtManager, store, log)
	if err := authService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("failed to ensure admin account", zap.Error(err))
	}

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("expiry", cfg.JWT.Expiry),
	)

	healthChecker := health.NewChecker(store, log)

	// HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:      cfg,
		Leads:       leadService,
		Campaigns:   campaignService,
		Automations: automationService,
		Templates:   templateService,
		SMTP:        smtpService,
		Auth:        authService,
		JWTManager:  jwtManager,
		Health:      healthChecker,
		Logger:      log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// 邮件派发协程池
	//
	// 用独立于信号的 context 启动：收到关闭信号后队列里的
	// 邮件任务还要跑完，Stop 返回前不能取消。
	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	workers.Start(poolCtx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		// 等待在途的邮件任务结束，之后才取消协程池 context
		workers.Stop()
		poolCancel()
		templateService.Close()

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// buildStore 按配置组装三层降级存储
func buildStore(cfg *config.Config, log *zap.Logger) *fallback.Store {
	var remote fallback.Remote
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		pgStore, err := postgres.NewStoreForType(cfg.Database.Type, cfg.Database.DSN)
		if err != nil {
			log.Warn("远端数据库初始化失败，以离线模式启动",
				zap.String("type", cfg.Database.Type),
				zap.Error(err))
		} else {
			remote = pgStore
			log.Info("using remote database", zap.String("type", cfg.Database.Type))
		}
	}

	var local storage.Store
	fileStore, err := file.NewStore(cfg.Data.Dir)
	if err == nil {
		err = initializeDataFiles(fileStore)
	}

	memStore := memory.NewStore()
	memStore.SetTemplates(domain.DefaultTemplates())

	if err != nil {
		// 文件层不可用时内存层兜底，并注入演示数据
		log.Warn("本地文件存储不可用，使用内存存储", zap.Error(err))
		memStore.SeedDemoData()
		local = memStore
		memStore = memory.NewStore()
		memStore.SetTemplates(domain.DefaultTemplates())
	} else {
		local = fileStore
		log.Info("local data directory ready", zap.String("dir", cfg.Data.Dir))
	}

	return fallback.NewStore(remote, local, memStore, cfg.Database.Timeout, log)
}

// initializeDataFiles 保证各数据文件存在且带初始内容
func initializeDataFiles(fs *file.Store) error {
	defaults := []struct {
		collection string
		value      interface{}
	}{
		{storage.CollectionLeads, []domain.Lead{}},
		{storage.CollectionCampaigns, []domain.Campaign{}},
		{storage.CollectionTemplates, domain.DefaultTemplates()},
		{storage.CollectionAutomations, domain.DefaultAutomations()},
	}
	for _, d := range defaults {
		if err := fs.Initialize(d.collection, d.value); err != nil {
			return err
		}
	}
	return nil
}
