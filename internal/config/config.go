package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// DataConfig 定义本地数据文件的存放位置
type DataConfig struct {
	Dir string // 本地 JSON 数据目录，默认 "./data"
}

// AdminConfig 定义管理员账户的初始化配置
//
// 仅在首次启动、账户不存在时生效，之后修改无效。
type AdminConfig struct {
	Email    string // 管理员邮箱，默认 "admin@seudominio.com.br"
	Password string // 初始口令，默认 "admin123"
}

// DatabaseConfig 定义远端数据库连接配置（支持 MySQL 和 PostgreSQL）
//
// Type 为空时不连接远端数据库，系统以离线模式运行。
type DatabaseConfig struct {
	Type    string        // 数据库类型: "mysql" 或 "postgres"
	DSN     string        // 数据库连接字符串
	Timeout time.Duration // 单次远端操作的等待上限，默认 5 秒
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret string        // JWT 签名密钥，必须至少 32 字符
	Issuer string        // JWT 签发者标识，默认 "leadpage"
	Expiry time.Duration // 访问令牌有效期，默认 8 小时
}

// MailConfig 定义邮件派发的并发配置
type MailConfig struct {
	Workers   int // 同时发送邮件的协程数，默认 4
	QueueSize int // 待发送队列长度，默认 256
}

// RateLimitConfig 定义公开订阅端点的限流配置
type RateLimitConfig struct {
	PerSecond float64 // 每个 IP 每秒允许的请求数，默认 1
	Burst     int     // 突发容量，默认 5
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空则只输出到标准输出
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig    // HTTP 服务器配置
	Data      DataConfig      // 本地数据目录配置
	Admin     AdminConfig     // 管理员初始化配置
	Database  DatabaseConfig  // 远端数据库配置
	JWT       JWTConfig       // JWT 认证配置
	Mail      MailConfig      // 邮件派发配置
	RateLimit RateLimitConfig // 订阅限流配置
	CORS      CORSConfig      // 跨域配置
	Log       LogConfig       // 日志配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: LEADPAGE_
// 例如: LEADPAGE_SERVER_PORT, LEADPAGE_JWT_SECRET
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	viper.SetEnvPrefix("leadpage")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("data.dir", "./data")
	viper.SetDefault("admin.email", "admin@seudominio.com.br")
	viper.SetDefault("admin.password", "admin123")
	viper.SetDefault("database.type", "") // 默认为空，仅用本地存储
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.timeout", "5s")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "leadpage")
	viper.SetDefault("jwt.expiry", "8h")
	viper.SetDefault("mail.workers", 4)
	viper.SetDefault("mail.queue_size", 256)
	viper.SetDefault("ratelimit.per_second", 1.0)
	viper.SetDefault("ratelimit.burst", 5)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")

	dbTimeout, err := time.ParseDuration(viper.GetString("database.timeout"))
	if err != nil || dbTimeout <= 0 {
		dbTimeout = 5 * time.Second
	}

	jwtExpiry, err := time.ParseDuration(viper.GetString("jwt.expiry"))
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = 8 * time.Hour
	}

	jwtSecret := viper.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set LEADPAGE_JWT_SECRET environment variable")
	}

	// JWT secret 必须至少 32 字符
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	dbType := strings.ToLower(strings.TrimSpace(viper.GetString("database.type")))
	switch dbType {
	case "", "mysql", "postgres", "postgresql":
	default:
		return nil, fmt.Errorf("invalid database.type: %q (supported: mysql, postgres)", dbType)
	}
	if dbType != "" && viper.GetString("database.dsn") == "" {
		return nil, fmt.Errorf("database.dsn is required when database.type is set")
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	workers := viper.GetInt("mail.workers")
	if workers <= 0 {
		workers = 4
	}
	queueSize := viper.GetInt("mail.queue_size")
	if queueSize <= 0 {
		queueSize = 256
	}

	perSecond := viper.GetFloat64("ratelimit.per_second")
	if perSecond <= 0 {
		perSecond = 1.0
	}
	burst := viper.GetInt("ratelimit.burst")
	if burst <= 0 {
		burst = 5
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Data: DataConfig{
			Dir: viper.GetString("data.dir"),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("admin.email"),
			Password: viper.GetString("admin.password"),
		},
		Database: DatabaseConfig{
			Type:    dbType,
			DSN:     viper.GetString("database.dsn"),
			Timeout: dbTimeout,
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
			Issuer: viper.GetString("jwt.issuer"),
			Expiry: jwtExpiry,
		},
		Mail: MailConfig{
			Workers:   workers,
			QueueSize: queueSize,
		},
		RateLimit: RateLimitConfig{
			PerSecond: perSecond,
			Burst:     burst,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（从 backend/ 子目录运行时）
//
// 已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
