package model

// RunStats aggregates what happened during one traversal so the caller
// can report under-fulfillment clearly.
type RunStats struct {
    TargetCount    int     `json:"target_count"`
    Probed         int     `json:"probed"`          // addresses dispatched to the prober
    Failed         int     `json:"failed"`          // addresses that never connected
    Unresolved     int     `json:"unresolved"`      // connected but country lookup failed
    Passing        int     `json:"passing"`         // connected and matched the country
    PoolsTried     int     `json:"pools_tried"`     // pools whose fetch was invoked
    PoolsSkipped   int     `json:"pools_skipped"`   // pools that yielded no candidates
    PoolsExhausted bool    `json:"pools_exhausted"` // ran out of pools before the target
    AvgLatencyMs   float64 `json:"avg_latency_ms"`  // over passing results
    DurationMs     int64   `json:"duration_ms"`
}

// Fulfilled reports whether the run found as many addresses as requested.
func (s RunStats) Fulfilled() bool {
	return s.Passing >= s.TargetCount
}
