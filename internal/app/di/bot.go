package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stock_bot/internal/app/scheduler"
	captiongemini "stock_bot/internal/feature/caption/adapters/gemini"
	captionusecase "stock_bot/internal/feature/caption/usecase"
	"stock_bot/internal/feature/chart/adapters/gochart"
	chartusecase "stock_bot/internal/feature/chart/usecase"
	postadapters "stock_bot/internal/feature/post/adapters"
	"stock_bot/internal/feature/post/adapters/telegram"
	posthandler "stock_bot/internal/feature/post/transport/handler"
	postusecase "stock_bot/internal/feature/post/usecase"
	quoteusecase "stock_bot/internal/feature/quote/usecase"
	"stock_bot/internal/platform/cache"
	"stock_bot/internal/platform/config"
	"stock_bot/internal/platform/db"
	"stock_bot/internal/platform/externalcall"
	infrahttp "stock_bot/internal/platform/http"
	"stock_bot/internal/platform/http/handler"
	"stock_bot/internal/platform/kafka"
	infraredis "stock_bot/internal/platform/redis"
	"stock_bot/internal/shared/ratelimiter"
)

// Bot は起動に必要な組み立て済みのコンポーネントです。
type Bot struct {
	Scheduler *scheduler.Scheduler
	Posts     *postusecase.PostUsecase
	Quotes    *quoteusecase.QuoteUsecase
	Cache     *cache.CachingMarketRepository
	History   *postusecase.HistoryUsecase

	closers []func() error
}

// Callers は外部呼び出しポリシーの組です。
type Callers struct {
	// Read は株価とニュースの取得、Generate は文章生成に使用します。
	Read     *externalcall.Caller
	Generate *externalcall.Caller
	// Delivery は送信用で、リトライしません。
	Delivery *externalcall.Caller
}

// NewCallers は設定から外部呼び出しポリシーを生成します。
func NewCallers(cfg config.ExternalConfig) Callers {
	read := externalcall.New(externalcall.Config{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	return Callers{
		Read:     read,
		Generate: read,
		Delivery: externalcall.New(externalcall.Config{Timeout: cfg.DeliveryTimeout}),
	}
}

// NewBot は設定から投稿パイプラインとスケジューラを組み立てます。
// Redis・Kafka・Geminiが利用できない場合は警告を出してそれなしで動作します。
func NewBot(ctx context.Context, cfg *config.Config) (*Bot, error) {
	b := &Bot{}
	ok := false
	defer func() {
		if !ok {
			_ = b.Close()
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone: %w", err)
	}

	client := infrahttp.NewHTTPClient(cfg.External.Timeout, "")
	callers := NewCallers(cfg.External)

	// 株価・ニュース
	market, err := NewMarket(cfg.Market, client)
	if err != nil {
		return nil, err
	}
	news, err := NewNews(cfg.News, client)
	if err != nil {
		return nil, err
	}

	rdb := b.openRedis(ctx, cfg.Redis)
	b.Cache = cache.NewCachingMarketRepository(rdb, cfg.Redis.CacheTTL, market, news, "quote")
	var headlines quoteusecase.NewsRepository
	if news != nil {
		headlines = b.Cache
	}
	b.Quotes = quoteusecase.NewQuoteUsecase(b.Cache, headlines, callers.Read, cfg.News.Count)

	// チャート
	charts := chartusecase.NewChartUsecase(gochart.NewRenderer(), cfg.Chart.Dir)

	// 文章生成
	var generator captionusecase.TextGenerator
	if g, err := captiongemini.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model); err != nil {
		slog.Warn("gemini unavailable; using fallback captions", "error", err)
	} else {
		generator = g
	}
	captions := captionusecase.NewCaptionUsecase(generator, callers.Generate)

	// 投稿先
	tg, err := telegram.NewBot(cfg.Telegram.BotToken, infrahttp.NewHTTPClient(cfg.External.DeliveryTimeout, ""))
	if err != nil {
		return nil, err
	}
	publisher, err := telegram.NewPublisher(tg, cfg.Telegram.ChannelID)
	if err != nil {
		return nil, err
	}

	// 投稿記録
	gdb, err := db.OpenDB(dbConfig(cfg.DB), &postadapters.PostRecordModel{})
	if err != nil {
		return nil, fmt.Errorf("open post record store: %w", err)
	}
	b.closeDB(gdb)
	repo := postadapters.NewPostRecordRepository(gdb)
	var records postusecase.RecordStore = repo
	if len(cfg.Kafka.Brokers) > 0 {
		pub := kafka.NewRecordPublisher(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		b.closers = append(b.closers, pub.Close)
		records = postadapters.NewFanoutRecorder(repo, pub)
		slog.Info("post records are mirrored to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	b.History = postusecase.NewHistoryUsecase(repo)

	b.Posts = postusecase.NewPostUsecase(postusecase.Deps{
		Quotes:    b.Quotes,
		Charts:    charts,
		Captions:  captions,
		Publisher: publisher,
		Records:   records,
		Delivery:  callers.Delivery,
	})

	opts := []scheduler.Option{scheduler.WithLocation(loc)}
	if cfg.RateLimit.Limit > 0 && cfg.RateLimit.Interval > 0 {
		opts = append(opts, scheduler.WithLimiter(ratelimiter.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Interval)))
	}
	b.Scheduler = scheduler.New(b.Posts, cfg.Schedule.Symbols, cfg.Schedule.Interval, opts...)

	ok = true
	return b, nil
}

// NewHealthHandler はスケジューラの状態を返すヘルスチェックハンドラーを生成します。
func (b *Bot) NewHealthHandler() *handler.HealthHandler {
	return handler.NewHealthHandler(b.Scheduler)
}

// NewPostHandler は投稿履歴APIのハンドラーを生成します。
func (b *Bot) NewPostHandler() *posthandler.PostHandler {
	return posthandler.NewPostHandler(b.History)
}

// Close は開いた接続をすべて閉じます。
func (b *Bot) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func (b *Bot) openRedis(ctx context.Context, cfg config.RedisConfig) *goredis.Client {
	if cfg.Host == "" {
		slog.Info("redis host not set; running without cache")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{Host: cfg.Host, Port: cfg.Port, Password: cfg.Password})
	if err != nil {
		slog.Warn("redis unavailable; running without cache", "error", err)
		return nil
	}
	b.closers = append(b.closers, rdb.Close)
	return rdb
}

func (b *Bot) closeDB(gdb *gorm.DB) {
	b.closers = append(b.closers, func() error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
}

func dbConfig(c config.DBConfig) db.Config {
	return db.Config{
		Driver:       c.Driver,
		Path:         c.Path,
		User:         c.User,
		Password:     c.Password,
		Name:         c.Name,
		Host:         c.Host,
		Port:         c.Port,
		InstanceName: c.InstanceName,
	}
}
