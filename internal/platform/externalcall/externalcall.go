// Package externalcall は外部サービス呼び出しにタイムアウトと上限付きリトライを付与します。
package externalcall

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config は呼び出しポリシーです。
type Config struct {
	Timeout    time.Duration // 1回の試行のタイムアウト（0以下なら無制限）
	MaxRetries int           // 初回失敗後の追加試行回数
	RetryDelay time.Duration // 試行間の待機時間
}

// Caller は外部呼び出しをポリシーに従って実行します。
type Caller struct {
	cfg Config
}

// New は新しいCallerを生成します。負のMaxRetriesは0として扱います。
func New(cfg Config) *Caller {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	return &Caller{cfg: cfg}
}

// Do はfnを実行し、失敗した場合はMaxRetries回まで再試行します。
// 各試行にはTimeout付きのcontextが渡されます。Permanentで包まれたエラーと
// 親contextの終了は再試行されません。
func (c *Caller) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		callCtx, cancel := c.attemptContext(ctx)
		defer cancel()
		return fn(callCtx)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(c.cfg.MaxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		slog.Warn("external call failed, retrying", "op", op, "attempt", attempt, "retry_in", wait, "error", err)
	}

	return backoff.RetryNotify(operation, policy, notify)
}

func (c *Caller) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// Permanent はリトライしてはならないエラーを包みます。
func Permanent(err error) error {
	return backoff.Permanent(err)
}
