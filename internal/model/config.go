package model

import (
	"errors"
	"fmt"
	"time"
)

// Defaults mirror the CLI defaults.
const (
	DefaultTimeout    = 5 * time.Second
	DefaultRetries    = 3
	DefaultRetryPause = 200 * time.Millisecond
)

// Config holds the run parameters for one optimization pass.
type Config struct {
    Country     string // target ISO country code, upper-cased
    Count       int    // how many passing addresses we want
    Port        int    // port probed on every address
    PerPoolCap  int    // max candidates materialized per pool
    Concurrency int    // max probes in flight within one pool
    Timeout     time.Duration
    Retries     int           // attempts per address (min 1)
    RetryPause  time.Duration // pause between failed attempts

    OutputFile string
    PoolsFile  string // optional INI file describing the pools
    GeoDBFile  string // optional MaxMind country database
    ProxyAddr  string // optional upstream SOCKS5 for TCP probes
    Verbose    bool
}

// Validate fails fast on configuration that would make a run meaningless.
// This is the only fatal error path; everything past it degrades gracefully.
func (c Config) Validate() error {
	if c.Country == "" {
		return errors.New("target country must not be empty")
	}
	if c.Count <= 0 {
		return fmt.Errorf("target count must be positive, got %d", c.Count)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.PerPoolCap <= 0 {
		return fmt.Errorf("per-pool cap must be positive, got %d", c.PerPoolCap)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	return nil
}
