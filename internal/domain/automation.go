package domain

import "time"

// AutomationTrigger 自动化规则的触发条件
type AutomationTrigger string

const (
	TriggerNewLead    AutomationTrigger = "new-lead"     // 新订阅者注册时
	TriggerAfter7Days AutomationTrigger = "after-7-days" // 注册满 7 天后
)

// AutomationTemplate 自动化规则内嵌的邮件模板
type AutomationTemplate struct {
	Subject string `json:"subject" gorm:"type:varchar(255)"`
	Content string `json:"content" gorm:"type:text"`
}

// Automation 表示触发条件与邮件模板配对的自动化规则
//
// Trigger 在创建后不可变；Active、Name 与 EmailTemplate 是
// 仅有的可变字段。
type Automation struct {
	ID            string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string             `json:"name" gorm:"type:varchar(255);not null"`
	Trigger       AutomationTrigger  `json:"trigger" gorm:"type:varchar(30);not null;index"`
	Active        bool               `json:"active" gorm:"default:false"`
	EmailTemplate AutomationTemplate `json:"emailTemplate" gorm:"embedded;embeddedPrefix:template_"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// AutomationPatch 描述部分更新：nil 字段保持不变
type AutomationPatch struct {
	Active        *bool               `json:"active"`
	Name          *string             `json:"name"`
	EmailTemplate *AutomationTemplate `json:"emailTemplate"`
}

// DefaultAutomations 返回新部署的初始自动化规则集
func DefaultAutomations() []Automation {
	return []Automation{
		{
			ID:      "welcome-email",
			Name:    "E-mail de Boas-Vindas",
			Trigger: TriggerNewLead,
			Active:  true,
			EmailTemplate: AutomationTemplate{
				Subject: "Bem-vindo à nossa comunidade!",
				Content: "<h1>Olá {{name}},</h1><p>Obrigado por se inscrever em nossa newsletter.</p>",
			},
			CreatedAt: time.Now().UTC(),
		},
	}
}
