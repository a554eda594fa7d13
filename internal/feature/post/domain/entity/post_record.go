// Package entity defines the domain entities for the post feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two messages published per cycle.
type Kind string

const (
	KindPhoto   Kind = "photo"
	KindSummary Kind = "summary"
)

// Status is the delivery result of a single message.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// PostRecord is an immutable audit entry for one delivery attempt.
type PostRecord struct {
	ID            uint            `json:"id,omitempty"`
	CycleID       string          `json:"cycle_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Symbol        string          `json:"symbol"`
	Kind          Kind            `json:"kind"`
	Price         decimal.Decimal `json:"price"`
	PercentChange float64         `json:"percent_change"`
	Caption       string          `json:"caption"`
	Status        Status          `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}
