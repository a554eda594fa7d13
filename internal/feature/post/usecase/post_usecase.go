// Package usecase は1回の投稿サイクル（取得→描画→文章生成→投稿→記録）を実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	chart "stock_bot/internal/feature/chart/domain/entity"
	"stock_bot/internal/feature/post/domain"
	"stock_bot/internal/feature/post/domain/entity"
	quote "stock_bot/internal/feature/quote/domain/entity"
)

// QuoteFetcher は株価とニュース見出しを取得します。
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*quote.Quote, error)
	FetchHeadlines(ctx context.Context, symbol string) []string
}

// ChartRenderer はチャート画像を生成し、送信後に削除します。
type ChartRenderer interface {
	RenderChart(ctx context.Context, q *quote.Quote) (*chart.ChartArtifact, error)
	Cleanup(artifact *chart.ChartArtifact) error
}

// CaptionGenerator は投稿文を生成します。失敗時もフォールバック文を返します。
type CaptionGenerator interface {
	GenerateCaption(ctx context.Context, symbol string, price decimal.Decimal) string
	GenerateSummary(ctx context.Context, symbol string, price decimal.Decimal, percentChange float64, headlines []string) string
}

// Publisher はメッセージングチャンネルへ送信します。
type Publisher interface {
	SendPhoto(ctx context.Context, path, caption string) error
	SendText(ctx context.Context, text string) error
}

// RecordStore は投稿記録を追記します。
type RecordStore interface {
	Append(ctx context.Context, rec entity.PostRecord) error
}

// ExternalCaller は外部呼び出しにタイムアウトとリトライを付与します。
type ExternalCaller interface {
	Do(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// Deps はパイプラインが使用する依存関係です。テストではフェイクに差し替えます。
type Deps struct {
	Quotes    QuoteFetcher
	Charts    ChartRenderer
	Captions  CaptionGenerator
	Publisher Publisher
	Records   RecordStore
	// Delivery は送信専用のポリシーです。重複送信を避けるためリトライなしで構成します。
	Delivery ExternalCaller
	Now      func() time.Time
	NewID    func() string
}

// PostUsecase は投稿サイクルを実行します。
type PostUsecase struct {
	d Deps
}

func NewPostUsecase(d Deps) *PostUsecase {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = func() string { return uuid.NewString() }
	}
	return &PostUsecase{d: d}
}

// RunCycle は1銘柄分の投稿サイクルを実行します。
// データ不足と描画失敗はスキップとして扱い、エラーは返しません。
// 送信失敗は失敗レコードを記録したうえでErrDeliveryFailedを包んで返します。
func (u *PostUsecase) RunCycle(ctx context.Context, symbol string) (entity.CycleResult, error) {
	res := entity.CycleResult{CycleID: u.d.NewID(), Symbol: symbol}
	log := slog.With("symbol", symbol, "cycle_id", res.CycleID)
	log.Info("post cycle started")

	q, err := u.d.Quotes.FetchQuote(ctx, symbol)
	if err != nil {
		log.Warn("skipping cycle due to missing data", "error", err)
		return skipped(res, err), nil
	}

	artifact, err := u.d.Charts.RenderChart(ctx, q)
	if err != nil {
		log.Warn("skipping cycle due to chart generation failure", "error", err)
		return skipped(res, err), nil
	}

	headlines := u.d.Quotes.FetchHeadlines(ctx, symbol)
	hashtags := domain.BuildHashtags(symbol, q.PercentChange)

	caption := u.d.Captions.GenerateCaption(ctx, symbol, q.LatestPrice)
	photoPost := compose(caption, hashtags)
	err = u.d.Delivery.Do(ctx, "telegram.photo", func(ctx context.Context) error {
		return u.d.Publisher.SendPhoto(ctx, artifact.Path, photoPost)
	})
	if err != nil {
		return u.deliveryFailed(ctx, log, res, q, entity.KindPhoto, photoPost, err)
	}
	u.record(ctx, log, res.CycleID, q, entity.KindPhoto, photoPost, nil)

	if err := u.d.Charts.Cleanup(artifact); err != nil {
		log.Warn("failed to remove chart", "path", artifact.Path, "error", err)
	}
	log.Info("photo post sent and chart cleaned up")

	summary := u.d.Captions.GenerateSummary(ctx, symbol, q.LatestPrice, q.PercentChange, headlines)
	summaryPost := compose(summary, hashtags)
	err = u.d.Delivery.Do(ctx, "telegram.summary", func(ctx context.Context) error {
		return u.d.Publisher.SendText(ctx, summaryPost)
	})
	if err != nil {
		return u.deliveryFailed(ctx, log, res, q, entity.KindSummary, summaryPost, err)
	}
	u.record(ctx, log, res.CycleID, q, entity.KindSummary, summaryPost, nil)
	log.Info("market summary post sent")

	res.Outcome = entity.OutcomePosted
	return res, nil
}

func (u *PostUsecase) deliveryFailed(ctx context.Context, log *slog.Logger, res entity.CycleResult, q *quote.Quote, kind entity.Kind, text string, cause error) (entity.CycleResult, error) {
	err := fmt.Errorf("%w: %s: %w", domain.ErrDeliveryFailed, kind, cause)
	log.Error("failed to deliver post", "kind", kind, "error", err)
	u.record(ctx, log, res.CycleID, q, kind, text, err)
	res.Outcome = entity.OutcomeFailed
	res.Reason = err
	return res, err
}

// record は監査用のレコードを書き込みます。失敗してもサイクルは継続します。
func (u *PostUsecase) record(ctx context.Context, log *slog.Logger, cycleID string, q *quote.Quote, kind entity.Kind, text string, cause error) {
	if u.d.Records == nil {
		return
	}
	rec := entity.PostRecord{
		CycleID:       cycleID,
		Timestamp:     u.d.Now(),
		Symbol:        q.Symbol,
		Kind:          kind,
		Price:         q.LatestPrice,
		PercentChange: q.PercentChange,
		Caption:       text,
		Status:        entity.StatusSuccess,
	}
	if cause != nil {
		rec.Status = entity.StatusFailure
		rec.ErrorMessage = cause.Error()
	}
	if err := u.d.Records.Append(ctx, rec); err != nil {
		log.Error("failed to append post record", "kind", kind, "error", err)
	}
}

func skipped(res entity.CycleResult, reason error) entity.CycleResult {
	res.Outcome = entity.OutcomeSkipped
	res.Reason = reason
	return res
}

func compose(text, hashtags string) string {
	return text + "\n\n" + hashtags
}
