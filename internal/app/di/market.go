// Package di はアプリケーションのコンポーネントを設定から組み立てるファクトリを提供します。
package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"stock_bot/internal/feature/quote/usecase"
	"stock_bot/internal/platform/config"
	"stock_bot/internal/platform/externalapi/alpaca"
	"stock_bot/internal/platform/externalapi/twelvedata"
	"stock_bot/internal/platform/externalapi/yahoo"
)

const (
	ProviderTwelveData = "twelvedata"
	ProviderYahoo      = "yahoo"
	ProviderAlpaca     = "alpaca"
	ProviderNone       = "none"
)

// NewMarket は設定されたプロバイダーの株価履歴リポジトリを生成します。未指定の場合はAPIキー不要のYahooを使用します。
func NewMarket(cfg config.MarketConfig, client *http.Client) (usecase.MarketRepository, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderYahoo:
		return yahoo.NewChartMarket(yahoo.Config{HistoryDays: cfg.HistoryDays}, client), nil
	case ProviderTwelveData:
		if cfg.TwelveDataAPIKey == "" {
			return nil, fmt.Errorf("market provider %q requires TWELVE_DATA_API_KEY", ProviderTwelveData)
		}
		return twelvedata.NewTwelveDataMarket(twelvedata.Config{
			TwelveDataAPIKey: cfg.TwelveDataAPIKey,
			BaseURL:          cfg.TwelveDataBaseURL,
			Interval:         cfg.HistoryInterval,
			OutputSize:       cfg.HistorySize,
		}, client), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}

// NewNews は設定されたプロバイダーのニュースリポジトリを生成します。
// "none" または認証情報が不足している場合はnilを返し、見出しなしで動作します。
func NewNews(cfg config.NewsConfig, client *http.Client) (usecase.NewsRepository, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderNone:
		return nil, nil
	case "", ProviderYahoo:
		return yahoo.NewNewsClient(yahoo.Config{BaseURL: cfg.YahooBaseURL}, client), nil
	case ProviderAlpaca:
		if cfg.AlpacaAPIKey == "" || cfg.AlpacaAPISecret == "" {
			slog.Warn("alpaca credentials are not set; running without headlines")
			return nil, nil
		}
		return alpaca.NewNewsClient(alpaca.Config{APIKey: cfg.AlpacaAPIKey, APISecret: cfg.AlpacaAPISecret}), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}
