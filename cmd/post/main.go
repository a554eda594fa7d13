package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"stock_bot/internal/app/di"
	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/platform/config"
	"stock_bot/internal/platform/logger"
)

// 1回分の投稿パスを実行して終了します。cronなど外部スケジューラーからの起動用です。
func main() {
	refresh := flag.Bool("refresh", false, "drop cached quotes and headlines before posting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log, closer, err := logger.New(logger.Config{Level: cfg.Log.Level, Path: cfg.Log.Path, MaxSizeMB: cfg.Log.MaxSizeMB, MaxBackups: cfg.Log.MaxBackups})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(log)

	code := run(cfg, *refresh)
	_ = closer.Close()
	os.Exit(code)
}

func run(cfg *config.Config, refresh bool) int {
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
	defer func() { _ = bot.Close() }()

	if refresh {
		for _, sym := range cfg.Schedule.Symbols {
			if err := bot.Cache.Invalidate(ctx, sym); err != nil {
				slog.Warn("failed to invalidate cache", "symbol", sym, "error", err)
			}
		}
	}

	failed := 0
	for _, res := range bot.Scheduler.RunOnce(ctx) {
		slog.Info("cycle result", "symbol", res.Symbol, "cycle_id", res.CycleID, "outcome", res.Outcome, "reason", res.Reason)
		if res.Outcome == entity.OutcomeFailed {
			failed++
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}
