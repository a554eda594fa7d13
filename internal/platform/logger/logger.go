// Package logger は標準出力とローテーションするログファイルへ書き込むslogロガーを構築します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config はログ出力の設定です。
type Config struct {
	Level      string // "debug" | "info" | "warn" | "error"
	Path       string // ログファイルのパス（空の場合は標準出力のみ）
	MaxSizeMB  int    // ローテーションするファイルサイズ（MB）
	MaxBackups int    // 保持する世代数
}

// New はConfigに従ってslog.Loggerを生成します。
// 返されるio.Closerはプロセス終了時にログファイルを閉じるために使用します。
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	return newWithStdout(cfg, os.Stdout)
}

func newWithStdout(cfg Config, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer = stdout
		closer io.Closer = nopCloser{}
	)

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(stdout, rotator)
		closer = rotator
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})
	return slog.New(handler), closer, nil
}

// ParseLevel はログレベル文字列をslog.Levelに変換します。不明な値はInfoになります。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
