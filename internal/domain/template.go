package domain

// EmailTemplate 只读的邮件模板目录条目
type EmailTemplate struct {
	ID      string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name    string `json:"name" gorm:"type:varchar(255);not null"`
	Subject string `json:"subject" gorm:"type:varchar(255)"`
	Content string `json:"content" gorm:"type:text"`
}

// DefaultTemplates 返回初始模板目录
func DefaultTemplates() []EmailTemplate {
	return []EmailTemplate{
		{
			ID:      "welcome",
			Name:    "Boas-Vindas",
			Subject: "Bem-vindo à nossa comunidade!",
			Content: "<h1>Olá {{name}},</h1><p>Obrigado por se inscrever em nossa newsletter.</p>",
		},
		{
			ID:      "newsletter",
			Name:    "Newsletter Semanal",
			Subject: "Novidades da semana",
			Content: "<h2>Olá {{name}},</h2><p>Confira as novidades desta semana.</p>",
		},
		{
			ID:      "promo",
			Name:    "Promoção",
			Subject: "Oferta especial para você",
			Content: "<h2>Olá {{name}},</h2><p>Temos uma oferta especial esperando por você.</p>",
		},
	}
}
