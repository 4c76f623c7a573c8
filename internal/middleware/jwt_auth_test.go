package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpage/backend/internal/auth/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := jwt.NewManager("test-secret-key-with-enough-length-123456", "leadpage", time.Hour)
	auth := NewJWTAuth(tokens, nil)

	r := gin.New()
	r.GET("/protected", auth.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})
	return r, tokens
}

func TestRequireAdminMissingToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Acesso não autorizado")
}

func TestRequireAdminInvalidToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido")
}

func TestRequireAdminExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	expired := jwt.NewManager("test-secret-key-with-enough-length-123456", "leadpage", -time.Minute)
	token, err := expired.Generate("admin@seudominio.com.br", "admin")
	require.NoError(t, err)

	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminValidToken(t *testing.T) {
	r, tokens := newAuthRouter(t)

	token, err := tokens.Generate("admin@seudominio.com.br", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@seudominio.com.br")
}

func TestRequireAdminMalformedHeader(t *testing.T) {
	r, tokens := newAuthRouter(t)

	token, err := tokens.Generate("admin@seudominio.com.br", "admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	r.ServeHTTP(w, req)

	// 非 Bearer 前缀视为缺少令牌
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
