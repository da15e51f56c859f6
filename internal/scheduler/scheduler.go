// Package scheduler probes one pool's addresses concurrently under a
// worker limit and stops dispatching new probes once enough passing
// results have been collected. Probes already in flight are allowed to
// finish, so a pool invocation can return up to concurrency-1 results
// beyond the requested count.
package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

// Options configures one pool invocation.
type Options struct {
    Port         int
    Concurrency  int
    Timeout      time.Duration
    Retries      int // attempts per address, min 1
    RetryPause   time.Duration
    Country      string // target country code
    Needed       int    // stop dispatching once this many results pass
    PoolName     string
    PoolPriority int

    Prober   model.Prober
    Resolver model.GeoResolver
    Log      *slog.Logger
}

// Tally reports what one pool invocation did, for run statistics.
type Tally struct {
    Dispatched int // addresses handed to a worker
    Failed     int // never connected within the retry budget
    Unresolved int // connected but country lookup failed
}

// Run probes addrs and returns the results that connected and matched
// the target country. It returns when every dispatched probe has been
// collected, either because the input is exhausted or because the
// needed count was reached and dispatch stopped early.
func Run(ctx context.Context, addrs []model.Address, opts Options) ([]model.PassingResult, Tally) {
	var tally Tally
	if opts.Needed <= 0 || len(addrs) == 0 {
		return nil, tally
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	resultsCh := make(chan model.PassingResult, len(addrs))
	sem := make(chan struct{}, opts.Concurrency)
	wg := &sync.WaitGroup{}

	var found atomic.Int64
	var failed, unresolved atomic.Int64
	needed := int64(opts.Needed)

	for _, addr := range addrs {
		if found.Load() >= needed {
			break
		}

		// Blocks until a worker slot frees, so the stop check above
		// runs between every dispatch decision.
		sem <- struct{}{}
		if found.Load() >= needed {
			<-sem
			break
		}

		tally.Dispatched++
		wg.Add(1)
		go func(a model.Address) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := probeWithRetries(ctx, a, opts)
			if !outcome.OK {
				failed.Add(1)
				opts.Log.Debug("probe failed", "pool", opts.PoolName, "ip", a.IP, "err", outcome.Err)
				return
			}

			country := a.Country
			if country == "" {
				var err error
				country, err = opts.Resolver.Resolve(ctx, a.IP)
				if err != nil {
					unresolved.Add(1)
					opts.Log.Debug("country lookup failed", "pool", opts.PoolName, "ip", a.IP, "err", err)
					return
				}
			}
			if !strings.EqualFold(country, opts.Country) {
				return
			}

			found.Add(1)
			resultsCh <- model.PassingResult{
				Address:      a,
				Country:      strings.ToUpper(country),
				Port:         resultPort(a, opts.Port),
				Pool:         opts.PoolName,
				PoolPriority: opts.PoolPriority,
				Latency:      outcome.Latency,
			}
		}(addr)
	}

	wg.Wait()
	close(resultsCh)

	out := make([]model.PassingResult, 0, opts.Needed)
	for r := range resultsCh {
		out = append(out, r)
	}
	tally.Failed = int(failed.Load())
	tally.Unresolved = int(unresolved.Load())
	return out, tally
}

// probeWithRetries attempts an address up to opts.Retries times and
// keeps the latency of the first successful attempt only.
func probeWithRetries(ctx context.Context, a model.Address, opts Options) model.ProbeOutcome {
	out := model.ProbeOutcome{Address: a}
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		latency, err := opts.Prober.Probe(ctx, a, opts.Port, opts.Timeout)
		if err == nil {
			out.OK = true
			out.Latency = latency
			out.Err = nil
			return out
		}
		out.Err = err

		if attempt < opts.Retries && opts.RetryPause > 0 {
			select {
			case <-time.After(opts.RetryPause):
			case <-ctx.Done():
				out.Err = ctx.Err()
				return out
			}
		}
	}
	return out
}

func resultPort(a model.Address, runPort int) int {
	if a.Port > 0 {
		return a.Port
	}
	return runPort
}
