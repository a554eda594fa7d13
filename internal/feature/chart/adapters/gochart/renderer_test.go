package gochart

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/feature/chart/domain/entity"
	quote "stock_bot/internal/feature/quote/domain/entity"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func spec(closes ...string) entity.ChartSpec {
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	pts := make([]quote.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = quote.PricePoint{Time: base.Add(time.Duration(i) * time.Hour), Close: decimal.RequireFromString(c)}
	}
	return entity.ChartSpec{Symbol: "AAPL", Title: "AAPL Stock Price ▲ 2.00%", Up: true, Points: pts, Width: 800, Height: 500}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec entity.ChartSpec
	}{
		{"rising", spec("148.10", "150.00", "153.00")},
		{"flat history", spec("100", "100", "100")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, NewRenderer().Render(context.Background(), tt.spec, &buf))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output must be a PNG")
		})
	}
}

func TestRenderer_Render_Errors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Error(t, NewRenderer().Render(context.Background(), spec("1"), &buf))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewRenderer().Render(ctx, spec("1", "2"), &buf), context.Canceled)
}

func TestPaddedRange(t *testing.T) {
	t.Parallel()

	r := paddedRange([]float64{100, 110})
	assert.InDelta(t, 99.5, r.Min, 1e-9)
	assert.InDelta(t, 110.5, r.Max, 1e-9)

	flat := paddedRange([]float64{100, 100})
	assert.Less(t, flat.Min, flat.Max)
}
