package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/August26/ipopt-go/internal/engine"
	"github.com/August26/ipopt-go/internal/geo"
	"github.com/August26/ipopt-go/internal/logging"
	"github.com/August26/ipopt-go/internal/model"
	"github.com/August26/ipopt-go/internal/output"
	"github.com/August26/ipopt-go/internal/prober"
	"github.com/August26/ipopt-go/internal/source"
)

func main() {
	var cfg model.Config
	var timeoutSeconds int
	var probeMode string
	var format string

	flag.StringVar(&cfg.Country, "country", "CN", "target country code")
	flag.IntVar(&cfg.Count, "count", 10, "how many passing addresses to find")
	flag.IntVar(&cfg.Port, "port", 443, "port to probe")
	flag.IntVar(&cfg.PerPoolCap, "max-ips", 512, "max candidates per pool")
	flag.IntVar(&cfg.Concurrency, "concurrency", 32, "number of concurrent probes within a pool")
	flag.IntVar(&timeoutSeconds, "timeout", 5, "timeout in seconds for each probe attempt")
	flag.IntVar(&cfg.Retries, "retries", model.DefaultRetries, "probe attempts per address (min 1)")
	flag.StringVar(&cfg.OutputFile, "output", "nodes.txt", "path to write the report")
	flag.StringVar(&format, "format", "nodes", "report format: nodes | json")
	flag.StringVar(&cfg.PoolsFile, "pools", "", "optional INI file describing the pools")
	flag.StringVar(&cfg.GeoDBFile, "geoip", "", "optional MaxMind country database")
	flag.StringVar(&cfg.ProxyAddr, "proxy", "", "optional upstream SOCKS5 proxy for probes")
	flag.StringVar(&probeMode, "probe", "tcp", "probe mode: tcp | http | https")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logs")

	flag.Parse()

	cfg.Country = strings.ToUpper(strings.TrimSpace(cfg.Country))
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
	cfg.RetryPause = model.DefaultRetryPause
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}

	log := logging.NewLogger(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	var pools []model.Pool
	if cfg.PoolsFile != "" {
		var err error
		pools, err = source.LoadPools(cfg.PoolsFile, cfg.Port, cfg.PerPoolCap, rnd, log)
		if err != nil {
			log.Error("failed to load pools file", "err", err, "path", cfg.PoolsFile)
			os.Exit(1)
		}
	} else {
		pools = source.DefaultPools(cfg.Port, cfg.PerPoolCap, rnd, log)
	}

	p, err := buildProber(probeMode, cfg.ProxyAddr)
	if err != nil {
		log.Error("failed to build prober", "err", err)
		os.Exit(1)
	}

	resolver, closeResolver, err := buildResolver(cfg.GeoDBFile)
	if err != nil {
		log.Error("failed to build geo resolver", "err", err)
		os.Exit(1)
	}
	defer closeResolver()

	log.Info("starting ipopt-go",
		"country", cfg.Country,
		"count", cfg.Count,
		"port", cfg.Port,
		"max_ips", cfg.PerPoolCap,
		"concurrency", cfg.Concurrency,
		"timeout_seconds", timeoutSeconds,
		"retries", cfg.Retries,
		"pools", len(pools),
		"probe", probeMode,
	)

	ctx := context.Background()

	results, stats, err := engine.New(p, resolver, log).Optimize(ctx, cfg, pools)
	if err != nil {
		log.Error("run aborted", "err", err)
		os.Exit(1)
	}

	// In-flight probes can push the accumulator slightly past the
	// target; the report keeps only the best cfg.Count entries.
	if len(results) > cfg.Count {
		results = results[:cfg.Count]
	}

	log.Info("run finished",
		"passing", stats.Passing,
		"probed", stats.Probed,
		"pools_tried", stats.PoolsTried,
		"fulfilled", stats.Fulfilled(),
		"total_ms", stats.DurationMs,
	)

	output.PrintResultsTable(os.Stdout, results)
	output.PrintSummary(os.Stdout, stats)

	switch format {
	case "nodes":
		err = output.WriteNodes(cfg.OutputFile, results)
	case "json":
		err = output.WriteJSON(cfg.OutputFile, results, stats)
	default:
		log.Error("unsupported format", "format", format)
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to write report", "err", err, "path", cfg.OutputFile)
		os.Exit(1)
	}
	log.Info("report written", "path", cfg.OutputFile, "format", format, "results", len(results))
}

func buildProber(mode, proxyAddr string) (model.Prober, error) {
	switch mode {
	case "tcp":
		if proxyAddr != "" {
			return prober.NewTCPViaSOCKS5(proxyAddr)
		}
		return prober.NewTCP(), nil
	case "http":
		return prober.NewHTTP("http", "/"), nil
	case "https":
		return prober.NewHTTP("https", "/cdn-cgi/trace"), nil
	default:
		return nil, fmt.Errorf("unsupported probe mode: %s", mode)
	}
}

// buildResolver chains the local MaxMind database (when configured)
// with the HTTP lookup service as fallback.
func buildResolver(geoDBFile string) (model.GeoResolver, func(), error) {
	api := geo.NewAPI()
	if geoDBFile == "" {
		return api, func() {}, nil
	}
	mm, err := geo.OpenMaxMind(geoDBFile)
	if err != nil {
		return nil, nil, err
	}
	return geo.Multi{mm, api}, func() { _ = mm.Close() }, nil
}
