// Package entity defines the domain models for the chart feature.
package entity

import (
	"time"

	quote "stock_bot/internal/feature/quote/domain/entity"
)

// Arrow glyphs drawn in the chart title.
const (
	ArrowUp   = "▲"
	ArrowDown = "▼"
)

// ChartSpec is everything a renderer needs to draw one price chart.
type ChartSpec struct {
	Symbol string
	Title  string
	Up     bool // accent colour: green when true, red otherwise
	Points []quote.PricePoint
	Width  int
	Height int
}

// ChartArtifact is a rendered chart image on disk.
type ChartArtifact struct {
	Symbol    string
	Path      string
	CreatedAt time.Time
}
