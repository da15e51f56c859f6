package analytics

import (
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

// Compute finalizes the run statistics from the accumulated results
// and the per-pool counters the engine gathered along the way.
func Compute(results []model.PassingResult, tally model.RunStats, duration time.Duration) model.RunStats {
	stats := tally
	stats.Passing = len(results)
	stats.PoolsExhausted = stats.Passing < stats.TargetCount
	stats.DurationMs = duration.Milliseconds()

	var latencySum int64
	var latencyCount int64
	for _, r := range results {
		if ms := r.LatencyMs(); ms > 0 {
			latencySum += ms
			latencyCount++
		}
	}
	if latencyCount > 0 {
		stats.AvgLatencyMs = float64(latencySum) / float64(latencyCount)
	}
	return stats
}
