// Package usecase は株価と関連ニュースの取得ロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"stock_bot/internal/feature/quote/domain/entity"
)

const (
	// DefaultHeadlineCount は取得するニュース見出しのデフォルト件数です。
	DefaultHeadlineCount = 5
	// minHistoryPoints は騰落率の計算に必要な最小データ点数です。
	minHistoryPoints = 2
	// priceScale は価格を丸める小数桁数です。
	priceScale = 2
)

// ErrNoData は株価履歴が取得できない、または不足している場合に返されます。
var ErrNoData = errors.New("no price data available")

// MarketRepository は株価履歴を取得するリポジトリのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// GetHistory は銘柄の直近の終値履歴を返します。順序は問いません。
	GetHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error)
}

// NewsRepository はニュース見出しを取得するリポジトリのインターフェースです。
type NewsRepository interface {
	// GetHeadlines は新しい順に最大count件の見出しを返します。
	GetHeadlines(ctx context.Context, symbol string, count int) ([]string, error)
}

// ExternalCaller は外部呼び出しにタイムアウトとリトライを付与します。
type ExternalCaller interface {
	Do(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

// QuoteUsecase は株価とニュース見出しの取得を提供します。
type QuoteUsecase struct {
	market        MarketRepository
	news          NewsRepository
	caller        ExternalCaller
	headlineCount int
}

// NewQuoteUsecase はQuoteUsecaseの新しいインスタンスを生成します。
// newsがnilの場合、見出しは常に空になります。
func NewQuoteUsecase(market MarketRepository, news NewsRepository, caller ExternalCaller, headlineCount int) *QuoteUsecase {
	if headlineCount <= 0 {
		headlineCount = DefaultHeadlineCount
	}
	return &QuoteUsecase{market: market, news: news, caller: caller, headlineCount: headlineCount}
}

// FetchQuote は最新価格・直前価格・騰落率を計算して返します。
// プロバイダーのエラーやデータ不足はすべてErrNoDataとして返します。
func (u *QuoteUsecase) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	var history []entity.PricePoint
	err := u.caller.Do(ctx, "market.history", func(ctx context.Context) error {
		h, err := u.market.GetHistory(ctx, symbol)
		if err != nil {
			return err
		}
		history = h
		return nil
	})
	if err != nil {
		slog.Error("failed to fetch price history", "symbol", symbol, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrNoData, symbol, err)
	}

	q, err := BuildQuote(symbol, history)
	if err != nil {
		slog.Error("no price data available", "symbol", symbol, "points", len(history))
		return nil, err
	}
	return q, nil
}

// BuildQuote は履歴からQuoteを組み立てます。入力スライスは変更しません。
func BuildQuote(symbol string, history []entity.PricePoint) (*entity.Quote, error) {
	if len(history) < minHistoryPoints {
		return nil, fmt.Errorf("%w: %s has %d points", ErrNoData, symbol, len(history))
	}

	sorted := make([]entity.PricePoint, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	latest := sorted[len(sorted)-1].Close.Round(priceScale)
	previous := sorted[len(sorted)-2].Close.Round(priceScale)
	if previous.IsZero() {
		return nil, fmt.Errorf("%w: %s previous price is zero", ErrNoData, symbol)
	}

	return &entity.Quote{
		Symbol:        symbol,
		LatestPrice:   latest,
		PreviousPrice: previous,
		PercentChange: PercentChange(previous, latest),
		History:       sorted,
	}, nil
}

// PercentChange は (latest - previous) / previous * 100 を返します。previousは0であってはなりません。
func PercentChange(previous, latest decimal.Decimal) float64 {
	return latest.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// FetchHeadlines はニュース見出しを取得します。失敗してもパイプラインを止めず空のスライスを返します。
func (u *QuoteUsecase) FetchHeadlines(ctx context.Context, symbol string) []string {
	if u.news == nil {
		return []string{}
	}

	var headlines []string
	err := u.caller.Do(ctx, "news.headlines", func(ctx context.Context) error {
		h, err := u.news.GetHeadlines(ctx, symbol, u.headlineCount)
		if err != nil {
			return err
		}
		headlines = h
		return nil
	})
	if err != nil {
		slog.Warn("no news fetched", "symbol", symbol, "error", err)
		return []string{}
	}

	out := make([]string, 0, u.headlineCount)
	for _, h := range headlines {
		if h == "" {
			continue
		}
		if len(out) == u.headlineCount {
			break
		}
		out = append(out, h)
	}
	return out
}
