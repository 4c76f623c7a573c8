package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadpage/backend/internal/auth/jwt"
)

// JWTAuth 管理接口的认证中间件
type JWTAuth struct {
	tokens *jwt.Manager
	log    *zap.Logger
}

// NewJWTAuth 创建认证中间件
func NewJWTAuth(tokens *jwt.Manager, log *zap.Logger) *JWTAuth {
	if log == nil {
		log = zap.NewNop()
	}
	return &JWTAuth{tokens: tokens, log: log}
}

// RequireAdmin 要求有效的管理员令牌
//
// 缺少 Bearer 头返回 401，令牌存在但无效或过期返回 403，
// 与既有管理前端的约定一致。
func (ja *JWTAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Acesso não autorizado",
			})
			return
		}

		claims, err := ja.tokens.Validate(token)
		if err != nil {
			ja.log.Warn("令牌校验失败",
				zap.String("ip", c.ClientIP()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Token inválido",
			})
			return
		}

		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// extractBearerToken 从 Authorization 头提取令牌
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
