package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chart "stock_bot/internal/feature/chart/domain/entity"
	"stock_bot/internal/feature/post/domain"
	"stock_bot/internal/feature/post/domain/entity"
	"stock_bot/internal/feature/post/usecase"
	quote "stock_bot/internal/feature/quote/domain/entity"
	"stock_bot/internal/platform/externalcall"
)

var (
	errNoData     = errors.New("no price data available")
	errRender     = errors.New("chart render failed")
	errDeliver    = errors.New("Bad Gateway")
	errRecordDown = errors.New("database is locked")
)

// mockQuoteFetcher はQuoteFetcherインターフェースのモック実装です。
type mockQuoteFetcher struct {
	FetchQuoteFunc      func(ctx context.Context, symbol string) (*quote.Quote, error)
	FetchHeadlinesCalls int
}

func (m *mockQuoteFetcher) FetchQuote(ctx context.Context, symbol string) (*quote.Quote, error) {
	return m.FetchQuoteFunc(ctx, symbol)
}

func (m *mockQuoteFetcher) FetchHeadlines(ctx context.Context, symbol string) []string {
	m.FetchHeadlinesCalls++
	return []string{"Apple beats earnings"}
}

// mockChartRenderer はChartRendererインターフェースのモック実装です。
type mockChartRenderer struct {
	RenderErr    error
	RenderCalls  int
	CleanupCalls int
}

func (m *mockChartRenderer) RenderChart(ctx context.Context, q *quote.Quote) (*chart.ChartArtifact, error) {
	m.RenderCalls++
	if m.RenderErr != nil {
		return nil, m.RenderErr
	}
	return &chart.ChartArtifact{Symbol: q.Symbol, Path: "charts/" + q.Symbol + "_chart.png"}, nil
}

func (m *mockChartRenderer) Cleanup(artifact *chart.ChartArtifact) error {
	m.CleanupCalls++
	return nil
}

// mockCaptions はCaptionGeneratorインターフェースのモック実装です。
type mockCaptions struct {
	LastHeadlines []string
}

func (m *mockCaptions) GenerateCaption(ctx context.Context, symbol string, price decimal.Decimal) string {
	return symbol + " current price: $" + price.StringFixed(2)
}

func (m *mockCaptions) GenerateSummary(ctx context.Context, symbol string, price decimal.Decimal, pct float64, headlines []string) string {
	m.LastHeadlines = headlines
	return symbol + " is trading at $" + price.StringFixed(2)
}

// mockPublisher はPublisherインターフェースのモック実装です。
type mockPublisher struct {
	PhotoErr   error
	TextErr    error
	PhotoCalls int
	TextCalls  int
	PhotoPath  string
	Photo      string
	Text       string
}

func (m *mockPublisher) SendPhoto(ctx context.Context, path, caption string) error {
	m.PhotoCalls++
	m.PhotoPath, m.Photo = path, caption
	return m.PhotoErr
}

func (m *mockPublisher) SendText(ctx context.Context, text string) error {
	m.TextCalls++
	m.Text = text
	return m.TextErr
}

// mockRecordStore はRecordStoreインターフェースのモック実装です。
type mockRecordStore struct {
	Err     error
	Records []entity.PostRecord
}

func (m *mockRecordStore) Append(ctx context.Context, rec entity.PostRecord) error {
	m.Records = append(m.Records, rec)
	return m.Err
}

func aaplQuote() *quote.Quote {
	base := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	return &quote.Quote{
		Symbol:        "AAPL",
		LatestPrice:   decimal.RequireFromString("153.00"),
		PreviousPrice: decimal.RequireFromString("150.00"),
		PercentChange: 2.0,
		History: []quote.PricePoint{
			{Time: base, Close: decimal.RequireFromString("150.00")},
			{Time: base.Add(time.Hour), Close: decimal.RequireFromString("153.00")},
		},
	}
}

type fixture struct {
	quotes    *mockQuoteFetcher
	charts    *mockChartRenderer
	captions  *mockCaptions
	publisher *mockPublisher
	records   *mockRecordStore
}

func newFixture() *fixture {
	return &fixture{
		quotes: &mockQuoteFetcher{FetchQuoteFunc: func(ctx context.Context, symbol string) (*quote.Quote, error) {
			return aaplQuote(), nil
		}},
		charts:    &mockChartRenderer{},
		captions:  &mockCaptions{},
		publisher: &mockPublisher{},
		records:   &mockRecordStore{},
	}
}

func (f *fixture) usecase() *usecase.PostUsecase {
	now := time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)
	return usecase.NewPostUsecase(usecase.Deps{
		Quotes:    f.quotes,
		Charts:    f.charts,
		Captions:  f.captions,
		Publisher: f.publisher,
		Records:   f.records,
		Delivery:  externalcall.New(externalcall.Config{Timeout: time.Second}),
		Now:       func() time.Time { return now },
		NewID:     func() string { return "cycle-1" },
	})
}

const aaplTags = "#AAPL #Bullish #Stocks #Finance #Trading #Investing"

// TestPostUsecase_RunCycle_Success は写真と要約の2通を送信し、それぞれ成功レコードを記録することを検証します。
func TestPostUsecase_RunCycle_Success(t *testing.T) {
	t.Parallel()

	f := newFixture()
	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomePosted, res.Outcome)
	assert.Equal(t, "cycle-1", res.CycleID)
	assert.NoError(t, res.Reason)

	assert.Equal(t, "charts/AAPL_chart.png", f.publisher.PhotoPath)
	assert.Equal(t, "AAPL current price: $153.00\n\n"+aaplTags, f.publisher.Photo)
	assert.Equal(t, "AAPL is trading at $153.00\n\n"+aaplTags, f.publisher.Text)
	assert.Equal(t, []string{"Apple beats earnings"}, f.captions.LastHeadlines)
	assert.Equal(t, 1, f.charts.CleanupCalls)

	require.Len(t, f.records.Records, 2)
	photo, summary := f.records.Records[0], f.records.Records[1]
	assert.Equal(t, entity.KindPhoto, photo.Kind)
	assert.Equal(t, entity.StatusSuccess, photo.Status)
	assert.Equal(t, "AAPL", photo.Symbol)
	assert.True(t, photo.Price.Equal(decimal.RequireFromString("153")))
	assert.InDelta(t, 2.0, photo.PercentChange, 1e-9)
	assert.Equal(t, f.publisher.Photo, photo.Caption)
	assert.Equal(t, "cycle-1", photo.CycleID)
	assert.Empty(t, photo.ErrorMessage)
	assert.Equal(t, entity.KindSummary, summary.Kind)
	assert.Equal(t, f.publisher.Text, summary.Caption)
}

// TestPostUsecase_RunCycle_NoData はデータ不足の場合に描画・送信・記録を行わずスキップすることを検証します。
func TestPostUsecase_RunCycle_NoData(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.quotes.FetchQuoteFunc = func(ctx context.Context, symbol string) (*quote.Quote, error) {
		return nil, errNoData
	}

	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Reason, errNoData)
	assert.Equal(t, 0, f.charts.RenderCalls)
	assert.Equal(t, 0, f.publisher.PhotoCalls+f.publisher.TextCalls)
	assert.Empty(t, f.records.Records)
}

// TestPostUsecase_RunCycle_RenderFailure は描画に失敗した場合に送信も記録も行わないことを検証します。
func TestPostUsecase_RunCycle_RenderFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.charts.RenderErr = errRender

	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Reason, errRender)
	assert.Equal(t, 0, f.publisher.PhotoCalls)
	assert.Equal(t, 0, f.publisher.TextCalls)
	assert.Empty(t, f.records.Records)
	assert.Equal(t, 0, f.quotes.FetchHeadlinesCalls)
}

// TestPostUsecase_RunCycle_PhotoDeliveryFailure は写真の送信失敗時に失敗レコードを残し、チャートを削除しないことを検証します。
func TestPostUsecase_RunCycle_PhotoDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.publisher.PhotoErr = errDeliver

	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.ErrorIs(t, err, errDeliver)
	assert.Equal(t, entity.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Reason, domain.ErrDeliveryFailed)

	assert.Equal(t, 1, f.publisher.PhotoCalls, "delivery must not be retried")
	assert.Equal(t, 0, f.publisher.TextCalls)
	assert.Equal(t, 0, f.charts.CleanupCalls, "chart stays on disk after a failed send")

	require.Len(t, f.records.Records, 1)
	rec := f.records.Records[0]
	assert.Equal(t, entity.StatusFailure, rec.Status)
	assert.Equal(t, entity.KindPhoto, rec.Kind)
	assert.Contains(t, rec.ErrorMessage, "Bad Gateway")
}

// TestPostUsecase_RunCycle_SummaryDeliveryFailure は要約の送信失敗時に写真の成功記録と要約の失敗記録が残ることを検証します。
func TestPostUsecase_RunCycle_SummaryDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.publisher.TextErr = errDeliver

	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.Equal(t, entity.OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, f.charts.CleanupCalls)

	require.Len(t, f.records.Records, 2)
	assert.Equal(t, entity.StatusSuccess, f.records.Records[0].Status)
	assert.Equal(t, entity.KindSummary, f.records.Records[1].Kind)
	assert.Equal(t, entity.StatusFailure, f.records.Records[1].Status)
}

// TestPostUsecase_RunCycle_RecordFailureIgnored は記録の失敗がサイクルを失敗させないことを検証します。
func TestPostUsecase_RunCycle_RecordFailureIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.records.Err = errRecordDown

	res, err := f.usecase().RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomePosted, res.Outcome)
	assert.Equal(t, 1, f.publisher.TextCalls)
}

// TestPostUsecase_RunCycle_GeneratesCycleID はNewID未指定の場合にUUIDが割り当てられることを検証します。
func TestPostUsecase_RunCycle_GeneratesCycleID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	uc := usecase.NewPostUsecase(usecase.Deps{
		Quotes:    f.quotes,
		Charts:    f.charts,
		Captions:  f.captions,
		Publisher: f.publisher,
		Delivery:  externalcall.New(externalcall.Config{}),
	})

	a, err := uc.RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)
	b, err := uc.RunCycle(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, a.CycleID, 36)
	assert.NotEqual(t, a.CycleID, b.CycleID)
}
