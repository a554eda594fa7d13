package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"stock_bot/internal/platform/config"
	jwtmw "stock_bot/internal/platform/jwt"
)

// 管理API用のJWTを発行して標準出力に書き出します。
func main() {
	subject := flag.String("sub", "admin", "token subject")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL).GenerateToken(*subject)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
