// Package engine drives the whole run: it walks the pools in priority
// order, probes each one through the scheduler, and stops as soon as
// the target count is reached. Running out of pools before the target
// is a reportable outcome, not an error.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/August26/ipopt-go/internal/analytics"
	"github.com/August26/ipopt-go/internal/model"
	"github.com/August26/ipopt-go/internal/rank"
	"github.com/August26/ipopt-go/internal/scheduler"
)

type Engine struct {
	prober   model.Prober
	resolver model.GeoResolver
	log      *slog.Logger
}

func New(prober model.Prober, resolver model.GeoResolver, log *slog.Logger) *Engine {
	return &Engine{prober: prober, resolver: resolver, log: log}
}

// Optimize traverses pools in ascending priority order (ties keep
// declaration order), probing each pool's candidates until cfg.Count
// passing results are accumulated or the pools run out. The returned
// results are ranked by latency. Only configuration errors fail; all
// per-pool and per-address failures are absorbed into the stats.
func (e *Engine) Optimize(ctx context.Context, cfg model.Config, pools []model.Pool) ([]model.PassingResult, model.RunStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, model.RunStats{}, err
	}
	if len(pools) == 0 {
		return nil, model.RunStats{}, errors.New("no pools supplied")
	}

	ordered := make([]model.Pool, len(pools))
	copy(ordered, pools)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	start := time.Now()
	stats := model.RunStats{TargetCount: cfg.Count}
	tried := make(map[string]struct{})
	var results []model.PassingResult

	for _, pool := range ordered {
		remaining := cfg.Count - len(results)
		if remaining <= 0 {
			// Target met: later pools are never even fetched.
			break
		}

		stats.PoolsTried++
		candidates := e.materialize(ctx, pool, cfg, tried)
		if len(candidates) == 0 {
			stats.PoolsSkipped++
			e.log.Warn("pool yielded no candidates, skipping", "pool", pool.Name)
			continue
		}

		e.log.Info("probing pool",
			"pool", pool.Name,
			"priority", pool.Priority,
			"candidates", len(candidates),
			"remaining", remaining,
		)

		poolResults, tally := scheduler.Run(ctx, candidates, scheduler.Options{
			Port:         cfg.Port,
			Concurrency:  cfg.Concurrency,
			Timeout:      cfg.Timeout,
			Retries:      cfg.Retries,
			RetryPause:   cfg.RetryPause,
			Country:      cfg.Country,
			Needed:       remaining,
			PoolName:     pool.Name,
			PoolPriority: pool.Priority,
			Prober:       e.prober,
			Resolver:     e.resolver,
			Log:          e.log,
		})

		results = append(results, poolResults...)
		stats.Probed += tally.Dispatched
		stats.Failed += tally.Failed
		stats.Unresolved += tally.Unresolved

		e.log.Info("pool finished",
			"pool", pool.Name,
			"dispatched", tally.Dispatched,
			"passing", len(poolResults),
			"total", len(results),
		)
	}

	rank.Results(results)
	return results, analytics.Compute(results, stats, time.Since(start)), nil
}

// materialize fetches a pool's candidates, drops addresses already
// tried earlier in the run, and caps the remainder at the per-pool
// limit. Every kept address is marked as tried.
func (e *Engine) materialize(ctx context.Context, pool model.Pool, cfg model.Config, tried map[string]struct{}) []model.Address {
	fetched := pool.Source.Fetch(ctx)

	out := make([]model.Address, 0, len(fetched))
	for _, addr := range fetched {
		if len(out) >= cfg.PerPoolCap {
			break
		}
		if _, dup := tried[addr.IP]; dup {
			continue
		}
		tried[addr.IP] = struct{}{}
		out = append(out, addr)
	}
	return out
}
