package domain

import (
	"strings"
	"time"
)

// Lead 表示通过落地页捕获的订阅者
//
// email 在单个存储内唯一；远端存储中 id 可能为空，
// 因此删除操作按 email 定位而不是按 id。
type Lead struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail 规范化邮箱地址（小写 + 去除空白）
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
