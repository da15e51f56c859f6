package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/August26/ipopt-go/internal/model"
	"github.com/August26/ipopt-go/internal/parser"
)

const fetchTimeout = 10 * time.Second

// RemoteCIDR fetches a plain-text list of CIDR blocks over HTTP and
// samples random host addresses from them. When the fetch fails and a
// fallback block list is configured, the fallback is expanded instead.
type RemoteCIDR struct {
	name     string
	url      string
	fallback []string
	maxAddrs int
	client   *http.Client
	rnd      *rand.Rand
	log      *slog.Logger
}

func NewRemoteCIDR(name, url string, fallback []string, maxAddrs int, rnd *rand.Rand, log *slog.Logger) *RemoteCIDR {
	return &RemoteCIDR{
		name:     name,
		url:      url,
		fallback: fallback,
		maxAddrs: maxAddrs,
		client:   &http.Client{Timeout: fetchTimeout},
		rnd:      rnd,
		log:      log,
	}
}

func (s *RemoteCIDR) Name() string { return s.name }

func (s *RemoteCIDR) Fetch(ctx context.Context) []model.Address {
	cidrs := s.fallback
	body, err := fetchText(ctx, s.client, s.url)
	if err != nil {
		if len(s.fallback) == 0 {
			s.log.Warn("CIDR list fetch failed", "pool", s.name, "url", s.url, "err", err)
			return nil
		}
		s.log.Warn("CIDR list fetch failed, using fallback blocks", "pool", s.name, "url", s.url, "err", err)
	} else {
		cidrs = textLines(body)
	}

	ips := ExpandCIDRs(cidrs, s.maxAddrs, s.rnd)
	out := make([]model.Address, 0, len(ips))
	for _, ip := range ips {
		out = append(out, model.Address{IP: ip, Pool: s.name})
	}
	return out
}

// RemoteList fetches a plain-text list of ip[:port][#comment] entries
// over HTTP, keeps only entries for the target port and caps the result
// by random sampling so one oversized list cannot dominate a run.
type RemoteList struct {
	name     string
	url      string
	port     int
	maxAddrs int
	client   *http.Client
	rnd      *rand.Rand
	log      *slog.Logger
}

func NewRemoteList(name, url string, port, maxAddrs int, rnd *rand.Rand, log *slog.Logger) *RemoteList {
	return &RemoteList{
		name:     name,
		url:      url,
		port:     port,
		maxAddrs: maxAddrs,
		client:   &http.Client{Timeout: fetchTimeout},
		rnd:      rnd,
		log:      log,
	}
}

func (s *RemoteList) Name() string { return s.name }

func (s *RemoteList) Fetch(ctx context.Context) []model.Address {
	body, err := fetchText(ctx, s.client, s.url)
	if err != nil {
		s.log.Warn("address list fetch failed", "pool", s.name, "url", s.url, "err", err)
		return nil
	}

	var out []model.Address
	for _, line := range textLines(body) {
		addr, err := parser.ParseLine(line, s.port)
		if err != nil {
			continue
		}
		if addr.Port != s.port {
			continue
		}
		addr.Pool = s.name
		out = append(out, addr)
	}

	if len(out) > s.maxAddrs {
		s.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		out = out[:s.maxAddrs]
	}
	return out
}

func fetchText(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// textLines splits a fetched body into trimmed lines, dropping blanks
// and comment lines.
func textLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
