package domain

import "time"

// CampaignStatus 活动生命周期状态
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"     // 草稿
	CampaignScheduled CampaignStatus = "scheduled" // 已排期
	CampaignSent      CampaignStatus = "sent"      // 已发送
)

// Campaign 表示一封面向全部订阅者的 HTML 邮件活动
//
// 状态只允许 draft→scheduled→sent 或 draft→sent 单向流转；
// SentAt 与 SentToCount 仅在发送时填充。
type Campaign struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Subject     string         `json:"subject" gorm:"type:varchar(255);not null"`
	Content     string         `json:"content" gorm:"type:text;not null"`
	SendAt      *time.Time     `json:"sendAt"`
	Status      CampaignStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	CreatedAt   time.Time      `json:"createdAt"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	SentToCount *int           `json:"sentToCount,omitempty"`
}

// CanSend 判断活动是否还允许发送
func (c *Campaign) CanSend() bool {
	return c.Status == CampaignDraft || c.Status == CampaignScheduled
}
