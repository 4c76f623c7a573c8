package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 响应约定：成功返回 {"success": true, ...}，
// 失败返回 {"error": "<mensagem>"}，与既有管理前端一致。

// respondOK 成功响应（200）
func respondOK(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

// respondError 错误响应
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "Requisição inválida"
	MsgEmailRequired  = "Email é obrigatório"

	// 认证相关
	MsgInvalidCredentials = "Credenciais inválidas"
	MsgUnauthorized       = "Acesso não autorizado"
	MsgInvalidToken       = "Token inválido"

	// 订阅相关
	MsgSubscribed        = "Inscrição realizada com sucesso"
	MsgAlreadySubscribed = "Inscrição já realizada"
	MsgLeadNotFound      = "Inscrito não encontrado"

	// 活动相关
	MsgCampaignNotFound = "Campanha não encontrada"

	// 自动化相关
	MsgAutomationNotFound = "Automação não encontrada"

	// SMTP 相关
	MsgSMTPTestOK     = "Conexão SMTP estabelecida com sucesso"
	MsgSMTPTestFailed = "Falha ao conectar ao servidor SMTP"

	// 服务器错误
	MsgInternalError = "Erro interno do servidor"
)
