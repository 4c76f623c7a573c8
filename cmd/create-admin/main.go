package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"leadpage/backend/internal/auth"
	"leadpage/backend/internal/config"
	"leadpage/backend/internal/domain"
)

// 把管理员凭据直接写入本地数据目录的 admin.json。
// 服务端启动时只在账户不存在的情况下做初始化，所以轮换
// 口令要用这个工具覆盖写入。
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: create-admin <email> <password>")
		os.Exit(1)
	}

	email := domain.NormalizeEmail(os.Args[1])
	password := os.Args[2]

	if email == "" {
		fmt.Println("Invalid email")
		os.Exit(1)
	}
	if len(password) < 6 {
		fmt.Println("Password must be at least 6 characters")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Printf("Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	account := domain.AdminAccount{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		fmt.Printf("Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode account: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(cfg.Data.Dir, "admin.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		fmt.Printf("Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Admin account written to %s\n", path)
	fmt.Printf("  Email: %s\n", email)
}
