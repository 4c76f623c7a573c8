package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/security"
	"leadpage/backend/internal/storage"
)

// AutomationService 自动化规则服务
type AutomationService struct {
	store  storage.Store
	filter *security.HTMLFilter
}

// NewAutomationService 创建自动化规则服务
func NewAutomationService(store storage.Store) *AutomationService {
	return &AutomationService{
		store:  store,
		filter: security.NewHTMLFilter(),
	}
}

// List 返回全部自动化规则（新建在前）
func (s *AutomationService) List() ([]domain.Automation, error) {
	return s.store.ListAutomations()
}

// CreateAutomationInput 创建自动化规则的输入参数
type CreateAutomationInput struct {
	Name    string
	Trigger domain.AutomationTrigger
	Active  bool
	Subject string
	Content string
}

// Create 创建自动化规则并插入列表头部
func (s *AutomationService) Create(input CreateAutomationInput) (*domain.Automation, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, newValidationError("name", "Nome é obrigatório")
	}
	switch input.Trigger {
	case domain.TriggerNewLead, domain.TriggerAfter7Days:
	default:
		return nil, newValidationError("trigger",
			fmt.Sprintf("Gatilho inválido: %q", input.Trigger))
	}
	if ok, _ := s.filter.Check(input.Content); !ok {
		return nil, newValidationError("content", "Conteúdo contém elementos não permitidos")
	}

	automation := &domain.Automation{
		ID:      uuid.New().String(),
		Name:    input.Name,
		Trigger: input.Trigger,
		Active:  input.Active,
		EmailTemplate: domain.AutomationTemplate{
			Subject: input.Subject,
			Content: input.Content,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertAutomation(automation); err != nil {
		return nil, fmt.Errorf("insert automation: %w", err)
	}
	return automation, nil
}

// Update 部分更新自动化规则
//
// 只覆盖补丁中出现的字段；trigger 创建后不可修改。
func (s *AutomationService) Update(id string, patch domain.AutomationPatch) (*domain.Automation, error) {
	automation, err := s.store.GetAutomation(id)
	if err != nil {
		if err == storage.ErrAutomationNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if patch.Active != nil {
		automation.Active = *patch.Active
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newValidationError("name", "Nome é obrigatório")
		}
		automation.Name = name
	}
	if patch.EmailTemplate != nil {
		if ok, _ := s.filter.Check(patch.EmailTemplate.Content); !ok {
			return nil, newValidationError("content", "Conteúdo contém elementos não permitidos")
		}
		automation.EmailTemplate = *patch.EmailTemplate
	}

	if err := s.store.UpdateAutomation(automation); err != nil {
		if err == storage.ErrAutomationNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update automation: %w", err)
	}
	return automation, nil
}
