// Package alpaca はAlpacaマーケットデータAPIのニュース取得アダプターです。
package alpaca

import (
	"context"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stock_bot/internal/feature/quote/usecase"
)

// Config はAlpaca APIの認証情報を保持します。
type Config struct {
	APIKey    string
	APISecret string
}

type newsGetter interface {
	GetNews(req marketdata.GetNewsRequest) ([]marketdata.News, error)
}

// NewsClient はAlpacaのニュースAPIから見出しを取得します。
type NewsClient struct {
	md newsGetter
}

var _ usecase.NewsRepository = (*NewsClient)(nil)

func NewNewsClient(cfg Config) *NewsClient {
	return &NewsClient{md: marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	})}
}

// GetHeadlines は新しい順に最大count件の見出しを返します。
// SDKはcontextを受け取らないため、呼び出し前にキャンセルを確認します。
func (c *NewsClient) GetHeadlines(ctx context.Context, symbol string, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	news, err := c.md.GetNews(marketdata.GetNewsRequest{
		Symbols:    []string{symbol},
		TotalLimit: count,
		Sort:       marketdata.SortDesc,
	})
	if err != nil {
		return nil, err
	}

	headlines := make([]string, 0, len(news))
	for _, n := range news {
		if n.Headline == "" {
			continue
		}
		headlines = append(headlines, n.Headline)
	}
	return headlines, nil
}
