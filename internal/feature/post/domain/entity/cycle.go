package entity

// Outcome is how a posting cycle ended.
type Outcome string

const (
	OutcomePosted  Outcome = "posted"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// CycleResult summarises one run of the posting pipeline for a symbol.
type CycleResult struct {
	CycleID string
	Symbol  string
	Outcome Outcome
	// Reason is nil when the cycle posted.
	Reason error
}
