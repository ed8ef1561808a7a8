package spell

// Result is the outcome of a cast attempt.
//
// PermaCancel is deliberately distinct from Success: turning a permabuff off
// is free, turning one on is billed at the normal cast cost.
type Result int

const (
	// Success means the spell took effect or a permabuff was switched on.
	Success Result = iota
	// PermaCancel means an active permabuff was switched off by this cast.
	PermaCancel
	// Abort means the cast was rejected before any cost was paid.
	Abort
)

// String returns a lowercase name for the result.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case PermaCancel:
		return "perma_cancel"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Billable reports whether the caller must charge the spell's cost.
func (r Result) Billable() bool {
	return r == Success
}
