package yahoo

import (
	"context"
	"net/http"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"stock_bot/internal/feature/quote/domain/entity"
	"stock_bot/internal/feature/quote/usecase"
)

// barIterator はfinance-goのチャートイテレータのうち使用する部分です。
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// ChartMarket はYahoo Financeのチャートから1時間足の終値履歴を取得します。
type ChartMarket struct {
	cfg   Config
	now   func() time.Time
	fetch func(p *chart.Params) barIterator
}

var _ usecase.MarketRepository = (*ChartMarket)(nil)

// NewChartMarket はChartMarketを生成します。clientがnil以外の場合、finance-goのHTTPクライアントを差し替えます。
func NewChartMarket(cfg Config, client *http.Client) *ChartMarket {
	if client != nil {
		finance.SetHTTPClient(client)
	}
	return &ChartMarket{
		cfg: cfg.withDefaults(),
		now: time.Now,
		fetch: func(p *chart.Params) barIterator {
			return chart.Get(p)
		},
	}
}

// GetHistory は直近HistoryDays日分の1時間足を古い順に返します。
func (m *ChartMarket) GetHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	end := m.now()
	start := end.AddDate(0, 0, -m.cfg.HistoryDays)

	iter := m.fetch(&chart.Params{
		Symbol:   symbol,
		Interval: datetime.OneHour,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	})
	return collect(ctx, iter)
}

// collect はイテレータを読み切ります。終値が0のバー（取引のない時間帯）は除外します。
func collect(ctx context.Context, iter barIterator) ([]entity.PricePoint, error) {
	var points []entity.PricePoint
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		if b == nil || b.Close.IsZero() {
			continue
		}
		points = append(points, entity.PricePoint{
			Time:  time.Unix(int64(b.Timestamp), 0).UTC(),
			Close: b.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
