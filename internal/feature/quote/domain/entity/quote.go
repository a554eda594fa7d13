// Package entity defines the domain models for the quote feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single closing price observation.
type PricePoint struct {
	Time  time.Time       `json:"time"`
	Close decimal.Decimal `json:"close"`
}

// Quote is the latest price of a symbol together with the short history it was derived from.
type Quote struct {
	Symbol        string          // Stock ticker symbol (e.g., "AAPL")
	LatestPrice   decimal.Decimal // Last close, rounded to cents
	PreviousPrice decimal.Decimal // Close before the last one, rounded to cents
	PercentChange float64         // (latest - previous) / previous * 100
	History       []PricePoint    // Chronological, at least two points
}

// Trend returns the direction of the last move.
func (q Quote) Trend() Trend {
	return TrendOf(q.PercentChange)
}

// Trend is the sign of a price move.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// TrendOf classifies a percent change. Exactly zero is flat.
func TrendOf(percentChange float64) Trend {
	switch {
	case percentChange > 0:
		return TrendUp
	case percentChange < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}
