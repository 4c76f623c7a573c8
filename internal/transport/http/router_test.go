package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpage/backend/internal/auth"
	jwtpkg "leadpage/backend/internal/auth/jwt"
	"leadpage/backend/internal/config"
	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/health"
	"leadpage/backend/internal/mailer"
	"leadpage/backend/internal/pool"
	"leadpage/backend/internal/service"
	"leadpage/backend/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store, *jwtpkg.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	for _, automation := range domain.DefaultAutomations() {
		require.NoError(t, store.InsertAutomation(&automation))
	}

	sender := mailer.New(func() (*domain.SMTPSettings, error) {
		return store.GetSMTPSettings()
	}, nil)

	workers := pool.NewWorkerPool(2, 16, nil)
	workers.Start(context.Background())
	t.Cleanup(workers.Stop)

	tokens := jwtpkg.NewManager("test-secret-key-with-enough-length-123456", "leadpage", time.Hour)
	authService := auth.NewService(store, tokens, nil, nil)
	require.NoError(t, authService.EnsureAdmin("admin@seudominio.com.br", "admin123"))

	cfg := &config.Config{
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{PerSecond: 1000, Burst: 1000},
	}

	templates := service.NewTemplateService(store)
	t.Cleanup(templates.Close)

	router := NewRouter(RouterDependencies{
		Config:      cfg,
		Leads:       service.NewLeadService(store, sender, workers, nil),
		Campaigns:   service.NewCampaignService(store, sender, workers, nil),
		Automations: service.NewAutomationService(store),
		Templates:   templates,
		SMTP:        service.NewSMTPService(store, sender),
		Auth:        authService,
		JWTManager:  tokens,
		Health:      health.NewChecker(store, nil),
	})
	return router, store, tokens
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "admin@seudominio.com.br",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestSubscribeEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/subscribe", "", gin.H{
		"email": "novo@example.com",
		"name":  "Novo Assinante",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		LeadID  string `json:"leadId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, MsgSubscribed, resp.Message)
	assert.NotEmpty(t, resp.LeadID)
}

func TestSubscribeAliasRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/subscribe", "", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribeMissingEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/subscribe", "", gin.H{"name": "Sem Email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email é obrigatório")
}

func TestSubscribeIdempotent(t *testing.T) {
	router, _, _ := newTestRouter(t)

	first := doJSON(router, http.MethodPost, "/subscribe", "", gin.H{"email": "dup@example.com"})
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(router, http.MethodPost, "/subscribe", "", gin.H{"email": "dup@example.com"})
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), MsgAlreadySubscribed)
}

func TestLoginAndProtectedRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	w := doJSON(router, http.MethodGet, "/api/leads", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/login", "", gin.H{
		"email":    "admin@seudominio.com.br",
		"password": "errada",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), MsgInvalidCredentials)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteWithInvalidToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/leads", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecoverPasswordAlwaysGeneric(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/recover-password", "", gin.H{"email": "qualquer@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "receberá instruções")
}

func TestCampaignLifecycle(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	// 先有一个订阅者
	require.Equal(t, http.StatusOK,
		doJSON(router, http.MethodPost, "/subscribe", "", gin.H{"email": "a@example.com"}).Code)

	w := doJSON(router, http.MethodPost, "/api/campaigns", token, gin.H{
		"name":    "Lançamento",
		"subject": "Novidades",
		"content": "<p>Olá {{name}}</p>",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		Campaign domain.Campaign `json:"campaign"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, domain.CampaignDraft, created.Campaign.Status)

	sent := doJSON(router, http.MethodPost, "/api/campaigns/"+created.Campaign.ID+"/send", token, nil)
	require.Equal(t, http.StatusOK, sent.Code)

	var sentResp struct {
		Campaign domain.Campaign `json:"campaign"`
	}
	require.NoError(t, json.Unmarshal(sent.Body.Bytes(), &sentResp))
	assert.Equal(t, domain.CampaignSent, sentResp.Campaign.Status)
	require.NotNil(t, sentResp.Campaign.SentToCount)
	assert.Equal(t, 1, *sentResp.Campaign.SentToCount)

	// 已发送的活动不能再次发送
	again := doJSON(router, http.MethodPost, "/api/campaigns/"+created.Campaign.ID+"/send", token, nil)
	assert.Equal(t, http.StatusBadRequest, again.Code)
}

func TestCampaignSendNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	w := doJSON(router, http.MethodPost, "/api/campaigns/inexistente/send", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAutomationPartialUpdate(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	list := doJSON(router, http.MethodGet, "/api/automations", token, nil)
	require.Equal(t, http.StatusOK, list.Code)

	var listResp struct {
		Automations []domain.Automation `json:"automations"`
	}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Automations)
	welcome := listResp.Automations[0]
	assert.Equal(t, "welcome-email", welcome.ID)

	w := doJSON(router, http.MethodPut, "/api/automations/"+welcome.ID, token, gin.H{"active": false})
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Automation domain.Automation `json:"automation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.False(t, updated.Automation.Active)
	// 未出现在补丁中的字段保持不变
	assert.Equal(t, welcome.Name, updated.Automation.Name)
	assert.Equal(t, welcome.EmailTemplate, updated.Automation.EmailTemplate)
}

func TestLeadDeleteByEmail(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	require.Equal(t, http.StatusOK,
		doJSON(router, http.MethodPost, "/subscribe", "", gin.H{"email": "del@example.com"}).Code)

	w := doJSON(router, http.MethodDelete, "/api/leads?email=del@example.com", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	again := doJSON(router, http.MethodDelete, "/api/leads?email=del@example.com", token, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestLeadExportCSV(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	require.Equal(t, http.StatusOK,
		doJSON(router, http.MethodPost, "/subscribe", "", gin.H{
			"email": "csv@example.com",
			"name":  "Exportada",
		}).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/leads/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "ID,Nome,Email,Data de Inscrição")
	assert.Contains(t, w.Body.String(), `"Exportada",csv@example.com`)
}

func TestStatusEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	w := doJSON(router, http.MethodGet, "/api/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"live"`)
}

func TestSMTPSettingsRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	save := doJSON(router, http.MethodPost, "/api/settings/smtp", token, gin.H{
		"host":        "smtp.example.com",
		"port":        "587",
		"user":        "mailer",
		"password":    "secreta",
		"senderEmail": "news@example.com",
		"useTls":      true,
	})
	require.Equal(t, http.StatusOK, save.Code)

	get := doJSON(router, http.MethodGet, "/api/settings/smtp", token, nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), "smtp.example.com")
	// 密码不回传
	assert.NotContains(t, get.Body.String(), "secreta")
}

func TestSMTPTestValidatesSubmittedSettings(t *testing.T) {
	router, _, _ := newTestRouter(t)
	token := loginToken(t, router)

	// 测试连接读取请求体，缺 host 的表单直接 400
	w := doJSON(router, http.MethodPost, "/api/settings/smtp/test", token, gin.H{
		"port": "587",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Servidor SMTP é obrigatório")

	w = doJSON(router, http.MethodPost, "/api/settings/smtp/test", token, gin.H{
		"host": "smtp.example.com",
		"port": "abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Porta inválida")
}
