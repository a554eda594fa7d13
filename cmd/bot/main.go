package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stock_bot/internal/app/di"
	"stock_bot/internal/app/router"
	"stock_bot/internal/platform/config"
	"stock_bot/internal/platform/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	log, closer, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		return 1
	}
	defer func() { _ = closer.Close() }()
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := di.NewBot(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize bot", "error", err)
		return 1
	}
	defer func() {
		if err := bot.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	// 管理用HTTPサーバー（ADMIN_ADDRが設定されている場合のみ）
	if cfg.Admin.Addr != "" {
		if cfg.Admin.JWTSecret == "" {
			slog.Warn("ADMIN_JWT_SECRET is not set; /v1 endpoints will reject every request")
		}
		srv := &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           router.NewRouter(bot.NewHealthHandler(), bot.NewPostHandler(), cfg.Admin.JWTSecret),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("admin server listening", "addr", cfg.Admin.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("admin server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := bot.Scheduler.Run(ctx); err != nil {
		slog.Error("scheduler exited", "error", err)
		return 1
	}
	slog.Info("bot stopped by user")
	return 0
}
