package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stock_bot/internal/feature/quote/domain/entity"
	"stock_bot/internal/feature/quote/usecase"
	"stock_bot/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataMarket はTwelve Data外部APIから株価履歴を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg.withDefaults(), client: client}
}

// GetHistory はTwelve Data APIから終値の時系列を取得し、古い順に並べて返します。
func (t *TwelveDataMarket) GetHistory(ctx context.Context, symbol string) ([]entity.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", t.cfg.Interval)
	q.Set("outputsize", strconv.Itoa(t.cfg.OutputSize))

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// APIキーはクエリに含めない。url.ErrorはURL全体を含む
	req.Header.Set("Authorization", "apikey "+t.cfg.TwelveDataAPIKey)

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	loc := time.UTC
	if body.Meta.Timezone != "" {
		if l, err := time.LoadLocation(body.Meta.Timezone); err == nil {
			loc = l
		}
	}

	// APIは新しい順に返すため、逆順に詰めて古い順にする
	points := make([]entity.PricePoint, len(body.Values))
	for i, v := range body.Values {
		tm, err := time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, loc)
		if err != nil {
			tm, err = time.ParseInLocation("2006-01-02", v.Datetime, loc)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		c, err := decimal.NewFromString(v.Close)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		points[len(body.Values)-1-i] = entity.PricePoint{Time: tm, Close: c}
	}
	return points, nil
}
