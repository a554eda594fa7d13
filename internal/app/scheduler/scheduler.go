// Package scheduler は平日のみ一定間隔で投稿サイクルを実行するループを提供します。
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"stock_bot/internal/feature/post/domain"
	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/shared/ratelimiter"
)

// DefaultInterval は投稿サイクルの間隔です。
const DefaultInterval = 6 * time.Hour

const (
	stateIdle int32 = iota
	stateRunning
)

// CycleRunner は1銘柄分の投稿サイクルを実行します。
type CycleRunner interface {
	RunCycle(ctx context.Context, symbol string) (entity.CycleResult, error)
}

// Scheduler は投稿サイクルを順番に実行します。サイクルが重なることはありません。
type Scheduler struct {
	runner   CycleRunner
	symbols  []string
	interval time.Duration
	loc      *time.Location
	limiter  ratelimiter.RateLimiterInterface
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	state   atomic.Int32
	lastRun atomic.Int64
}

// Option はSchedulerの設定を変更します。
type Option func(*Scheduler)

// WithLocation は曜日判定に使うタイムゾーンを指定します。
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLimiter は銘柄ごとのサイクル開始を制限するレートリミッターを指定します。
func WithLimiter(l ratelimiter.RateLimiterInterface) Option {
	return func(s *Scheduler) { s.limiter = l }
}

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithSleep は待機関数を差し替えます。
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) { s.sleep = sleep }
}

func New(runner CycleRunner, symbols []string, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		runner:   runner,
		symbols:  symbols,
		interval: interval,
		loc:      time.Local,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State は "idle" または "running" を返します。
func (s *Scheduler) State() string {
	if s.state.Load() == stateRunning {
		return "running"
	}
	return "idle"
}

// LastRunAt は直近に平日のパスを開始した時刻を返します。未実行ならゼロ値です。
func (s *Scheduler) LastRunAt() time.Time {
	n := s.lastRun.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Run はctxがキャンセルされるまでパスと待機を繰り返します。
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("bot started", "symbols", s.symbols, "interval", s.interval, "timezone", s.loc.String())
	for {
		s.RunOnce(ctx)

		slog.Info("waiting until next check", "interval", s.interval)
		if err := s.sleep(ctx, s.interval); err != nil {
			slog.Info("scheduler stopped", "reason", err)
			return nil
		}
	}
}

// RunOnce は1回分のパスを実行します。土日の場合はパイプラインを呼ばず、
// 全銘柄をErrMarketClosedでスキップした結果を返します。
func (s *Scheduler) RunOnce(ctx context.Context) []entity.CycleResult {
	now := s.now().In(s.loc)
	results := make([]entity.CycleResult, 0, len(s.symbols))

	if isWeekend(now.Weekday()) {
		slog.Info("weekend detected, skipping post cycle", "weekday", now.Weekday().String())
		for _, sym := range s.symbols {
			results = append(results, entity.CycleResult{Symbol: sym, Outcome: entity.OutcomeSkipped, Reason: domain.ErrMarketClosed})
		}
		return results
	}

	s.state.Store(stateRunning)
	defer s.state.Store(stateIdle)
	s.lastRun.Store(now.UnixNano())
	slog.Info("market open (weekday), running post cycle", "weekday", now.Weekday().String())

	for _, sym := range s.symbols {
		if s.limiter != nil {
			if err := s.limiter.WaitIfNeeded(ctx); err != nil {
				slog.Warn("post pass interrupted", "error", err)
				return results
			}
		}
		if err := ctx.Err(); err != nil {
			return results
		}

		res, err := s.runner.RunCycle(ctx, sym)
		if err != nil {
			slog.Error("post cycle failed", "symbol", sym, "cycle_id", res.CycleID, "error", err)
		} else {
			slog.Info("post cycle finished", "symbol", sym, "cycle_id", res.CycleID, "outcome", res.Outcome)
		}
		results = append(results, res)
	}
	return results
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

