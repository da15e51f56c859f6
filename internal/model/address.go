package model

import (
	"context"
	"time"
)

// Address is one candidate IP produced by an AddressSource.
// Immutable once produced.
type Address struct {
    IP      string // IPv4 literal
    Port    int    // port to probe; 0 means "use the run port"
    Country string // pre-known country code from the source, "" if unknown
    Pool    string // origin pool label
}

// Pool is a named, prioritized source of candidate addresses.
// Lower Priority is tried first; ties keep declaration order.
type Pool struct {
    Name     string
    Priority int
    Source   AddressSource
}

// AddressSource yields a pool's candidate addresses.
// A fetch failure is reported upstream by the implementation and
// surfaces here only as an empty slice; it never aborts a run.
type AddressSource interface {
	Name() string
	Fetch(ctx context.Context) []Address
}

// Prober performs a single connectivity attempt against addr on port
// and returns the measured latency.
type Prober interface {
	Probe(ctx context.Context, addr Address, port int, timeout time.Duration) (time.Duration, error)
}

// GeoResolver maps an IP literal to an ISO country code.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (string, error)
}

// ProbeOutcome is the result of probing one address.
// Latency is meaningful only when OK is true.
type ProbeOutcome struct {
    Address Address
    Latency time.Duration
    OK      bool
    Err     error
}

// PassingResult is an address that responded within the timeout and
// geolocated to the target country. This is the unit accumulated
// across pools and eventually written out.
type PassingResult struct {
    Address      Address
    Country      string
    Port         int
    Pool         string
    PoolPriority int
    Latency      time.Duration
}

// LatencyMs returns the latency rounded to whole milliseconds for reporting.
func (r PassingResult) LatencyMs() int64 {
	return r.Latency.Milliseconds()
}
