package service

import (
	"time"

	"leadpage/backend/internal/cache"
	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

const templatesCacheKey = "templates"

// TemplateService 邮件模板目录服务（只读）
//
// 目录内容基本不变，用短 TTL 缓存挡掉管理后台
// 每次打开编辑器触发的重复读取。
type TemplateService struct {
	store storage.TemplateRepository
	cache *cache.TTLCache
}

// NewTemplateService 创建模板服务
func NewTemplateService(store storage.TemplateRepository) *TemplateService {
	return &TemplateService{
		store: store,
		cache: cache.New(time.Minute),
	}
}

// Close 停止缓存的清理协程
func (s *TemplateService) Close() {
	s.cache.Close()
}

// List 返回模板目录
func (s *TemplateService) List() ([]domain.EmailTemplate, error) {
	if cached, ok := s.cache.Get(templatesCacheKey); ok {
		return cached.([]domain.EmailTemplate), nil
	}

	templates, err := s.store.ListTemplates()
	if err != nil {
		return nil, err
	}

	s.cache.Set(templatesCacheKey, templates)
	return templates, nil
}
