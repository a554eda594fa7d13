// Package domain defines domain-level errors and pure helpers for the post feature.
package domain

import "errors"

var (
	// ErrDeliveryFailed indicates that the messaging API rejected or did not complete a send.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrMarketClosed is the skip reason for cycles that fall on a weekend.
	ErrMarketClosed = errors.New("market closed")
)
