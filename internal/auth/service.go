package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"leadpage/backend/internal/auth/jwt"
	"leadpage/backend/internal/domain"
	"leadpage/backend/internal/storage"
)

var (
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RecoverPasswordMessage 密码找回的统一回复
//
// 无论邮箱是否存在都返回同一句话，避免账户枚举。
const RecoverPasswordMessage = "Se este e-mail estiver cadastrado, você receberá instruções para redefinir sua senha."

// RoleAdmin 管理员角色
const RoleAdmin = "admin"

// ModeProber 登录时执行一次远端连通性探测
type ModeProber interface {
	Probe(ctx context.Context) string
}

// Service 管理员认证服务
type Service struct {
	store  storage.AdminRepository
	tokens *jwt.Manager
	prober ModeProber
	logger *zap.Logger
}

// NewService 创建认证服务
func NewService(store storage.AdminRepository, tokens *jwt.Manager, prober ModeProber, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		tokens: tokens,
		prober: prober,
		logger: logger,
	}
}

// EnsureAdmin 保证单例管理员账户存在
//
// 账户已存在时不做任何修改，默认口令只在首次初始化时写入。
func (s *Service) EnsureAdmin(email, password string) error {
	if _, err := s.store.GetAdminAccount(); err == nil {
		return nil
	} else if err != storage.ErrAdminNotFound {
		return fmt.Errorf("load admin account: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	account := &domain.AdminAccount{
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.SaveAdminAccount(account); err != nil {
		return fmt.Errorf("save admin account: %w", err)
	}

	s.logger.Info("管理员账户已初始化", zap.String("email", account.Email))
	return nil
}

// LoginResult 登录结果
type LoginResult struct {
	Token string
	Email string
	Role  string
	Mode  string // live 或 offline
}

// Login 管理员登录
//
// 登录成功时顺带执行一次远端存储探测，探测结果决定本次
// 管理会话的运行模式。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.store.GetAdminAccount()
	if err != nil {
		if err == storage.ErrAdminNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin account: %w", err)
	}

	if account.Email != email || !VerifyPassword(account.PasswordHash, password) {
		s.logger.Warn("登录失败", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	// 旧格式哈希在成功登录时就地升级为 bcrypt
	if isLegacyHash(account.PasswordHash) {
		if hash, err := HashPassword(password); err == nil {
			account.PasswordHash = hash
			if err := s.store.SaveAdminAccount(account); err != nil {
				s.logger.Warn("口令哈希升级失败", zap.Error(err))
			}
		}
	}

	token, err := s.tokens.Generate(account.Email, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	mode := "live"
	if s.prober != nil {
		mode = s.prober.Probe(ctx)
	}

	s.logger.Info("管理员登录成功",
		zap.String("email", account.Email),
		zap.String("mode", mode))

	return &LoginResult{
		Token: token,
		Email: account.Email,
		Role:  RoleAdmin,
		Mode:  mode,
	}, nil
}

// RecoverPassword 密码找回
//
// 当前范围内没有真实的重置流程，固定返回统一消息。
func (s *Service) RecoverPassword(email string) string {
	s.logger.Info("收到密码找回请求", zap.String("email", domain.NormalizeEmail(email)))
	return RecoverPasswordMessage
}

// ========== 口令哈希 ==========

// HashPassword 生成 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword 校验口令
//
// 早期部署的 admin.json 存的是无盐 SHA-256 十六进制哈希，
// 这里同时接受两种格式，保证旧数据文件可以直接继续用。
func VerifyPassword(storedHash, password string) bool {
	if isLegacyHash(storedHash) {
		sum := sha256.Sum256([]byte(password))
		candidate := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(storedHash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// isLegacyHash 判断是否为旧格式（64 位十六进制，无 bcrypt 前缀）
func isLegacyHash(hash string) bool {
	if strings.HasPrefix(hash, "$2") {
		return false
	}
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
