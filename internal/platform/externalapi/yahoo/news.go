package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"stock_bot/internal/feature/quote/usecase"
)

type searchResponse struct {
	News []struct {
		Title string `json:"title"`
	} `json:"news"`
}

// NewsClient はYahoo Finance検索APIからニュース見出しを取得します。
type NewsClient struct {
	cfg    Config
	client *http.Client
}

var _ usecase.NewsRepository = (*NewsClient)(nil)

func NewNewsClient(cfg Config, client *http.Client) *NewsClient {
	return &NewsClient{cfg: cfg.withDefaults(), client: client}
}

// GetHeadlines は検索APIが返す順（新しい順）に最大count件の見出しを返します。
func (n *NewsClient) GetHeadlines(ctx context.Context, symbol string, count int) ([]string, error) {
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("newsCount", strconv.Itoa(count))
	q.Set("quotesCount", "0")

	u := fmt.Sprintf("%s/v1/finance/search?%s", n.cfg.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo search http %d", res.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	headlines := make([]string, 0, len(body.News))
	for _, item := range body.News {
		if item.Title == "" {
			continue
		}
		headlines = append(headlines, item.Title)
		if len(headlines) == count {
			break
		}
	}
	return headlines, nil
}
