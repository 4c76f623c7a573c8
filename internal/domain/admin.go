package domain

import "time"

// AdminAccount 管理后台的单例账户
//
// 每套部署有且只有一条记录。结构会整体写入本地 admin.json，
// 所以哈希字段参与 JSON 序列化；对外接口从不返回这个结构。
type AdminAccount struct {
	Email        string    `json:"email" gorm:"primaryKey;type:varchar(255)"`
	PasswordHash string    `json:"passwordHash" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
}
