// Package gochart はgo-chartを使ったチャート描画アダプターです。
package gochart

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"stock_bot/internal/feature/chart/domain/entity"
	"stock_bot/internal/feature/chart/usecase"
)

var (
	colorUp    = drawing.ColorFromHex("2e7d32")
	colorDown  = drawing.ColorFromHex("c62828")
	colorPrice = drawing.ColorFromHex("1565c0")
)

// Renderer はTimeSeriesの折れ線チャートをPNGで出力します。
type Renderer struct{}

var _ usecase.Renderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render はspecをPNGとしてwに書き込みます。
func (r *Renderer) Render(ctx context.Context, spec entity.ChartSpec, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(spec.Points) < 2 {
		return errors.New("at least two points are required")
	}

	xs := make([]time.Time, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		xs[i] = p.Time
		ys[i] = p.Close.InexactFloat64()
	}

	accent := colorDown
	if spec.Up {
		accent = colorUp
	}

	graph := chart.Chart{
		Title: spec.Title,
		TitleStyle: chart.Style{
			FontColor: accent,
			FontSize:  14,
		},
		Width:  spec.Width,
		Height: spec.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02 15:04"),
		},
		YAxis: chart.YAxis{
			Name:  "Price (USD)",
			Range: paddedRange(ys),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Price",
				Style: chart.Style{
					StrokeColor: colorPrice,
					StrokeWidth: 2,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// paddedRange はY軸の範囲を上下5%広げます。値がすべて同じ場合でも幅を持たせます。
func paddedRange(ys []float64) *chart.ContinuousRange {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(hi*0.01, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
