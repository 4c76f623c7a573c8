package domain

// SMTPSettings 活动发送使用的 SMTP 服务器配置（单例）
//
// Port 保持字符串形式，与管理界面的输入保持一致。
type SMTPSettings struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	Host        string `json:"host" gorm:"type:varchar(255)"`
	Port        string `json:"port" gorm:"type:varchar(10)"`
	User        string `json:"user" gorm:"type:varchar(255)"`
	Password    string `json:"password" gorm:"type:varchar(255)"`
	SenderEmail string `json:"senderEmail" gorm:"type:varchar(255)"`
	UseTLS      bool   `json:"useTls" gorm:"default:true"`
}

// Configured 判断设置是否足以建立 SMTP 连接
func (s *SMTPSettings) Configured() bool {
	return s != nil && s.Host != "" && s.Port != ""
}

// Sanitized 返回抹去密码的拷贝，用于回传给前端
func (s *SMTPSettings) Sanitized() SMTPSettings {
	out := *s
	out.Password = ""
	return out
}
