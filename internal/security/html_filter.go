package security

import (
	"regexp"
)

// HTMLFilter 校验活动与自动化邮件的 HTML 正文
//
// 邮件客户端不执行脚本，含脚本的正文只会触发垃圾邮件判定，
// 所以在落库之前直接拒绝。
type HTMLFilter struct {
	blockedPatterns []*regexp.Regexp
}

// NewHTMLFilter 创建 HTML 内容过滤器
func NewHTMLFilter() *HTMLFilter {
	return &HTMLFilter{
		blockedPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?is)<script[^>]*>`),
			regexp.MustCompile(`(?i)javascript:`),
			regexp.MustCompile(`(?i)\bon(load|error|click|mouseover)\s*=`),
			regexp.MustCompile(`(?i)<iframe[^>]*>`),
			regexp.MustCompile(`(?i)<object[^>]*>`),
			regexp.MustCompile(`(?i)<embed[^>]*>`),
			regexp.MustCompile(`(?i)document\.cookie`),
		},
	}
}

// Check 检查正文是否可以发送
//
// 返回 false 时附带命中的模式，便于日志定位。
func (f *HTMLFilter) Check(content string) (bool, string) {
	for _, pattern := range f.blockedPatterns {
		if pattern.MatchString(content) {
			return false, pattern.String()
		}
	}
	return true, ""
}
