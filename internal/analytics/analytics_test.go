package analytics

import (
	"testing"
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

func TestCompute(t *testing.T) {
	results := []model.PassingResult{
		{Latency: 30 * time.Millisecond},
		{Latency: 50 * time.Millisecond},
	}
	tally := model.RunStats{
		TargetCount: 5,
		Probed:      40,
		Failed:      30,
		Unresolved:  8,
		PoolsTried:  3,
	}

	stats := Compute(results, tally, 1500*time.Millisecond)
	if stats.Passing != 2 {
		t.Fatalf("passing = %d", stats.Passing)
	}
	if !stats.PoolsExhausted {
		t.Fatalf("2 of 5 means the pools ran out")
	}
	if stats.AvgLatencyMs != 40.0 {
		t.Fatalf("avg latency = %v", stats.AvgLatencyMs)
	}
	if stats.DurationMs != 1500 {
		t.Fatalf("duration = %d", stats.DurationMs)
	}
	if stats.Probed != 40 || stats.Failed != 30 {
		t.Fatalf("tally counters must pass through: %+v", stats)
	}
}

func TestCompute_FulfilledRun(t *testing.T) {
	results := []model.PassingResult{
		{Latency: 10 * time.Millisecond},
		{Latency: 20 * time.Millisecond},
	}
	stats := Compute(results, model.RunStats{TargetCount: 2}, time.Second)
	if stats.PoolsExhausted {
		t.Fatalf("a fulfilled run did not exhaust the pools")
	}
	if !stats.Fulfilled() {
		t.Fatalf("expected fulfilled stats: %+v", stats)
	}
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil, model.RunStats{TargetCount: 3}, time.Second)
	if stats.Passing != 0 || stats.AvgLatencyMs != 0 {
		t.Fatalf("unexpected stats for empty run: %+v", stats)
	}
}
