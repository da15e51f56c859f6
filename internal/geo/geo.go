// Package geo resolves IP addresses to ISO country codes. Resolution
// failures are per-address conditions: callers treat them as "country
// unknown" and drop the address instead of aborting the run.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/August26/ipopt-go/internal/model"
)

const apiTimeout = 5 * time.Second

// MaxMind resolves countries from a local MaxMind country database.
type MaxMind struct {
	db *geoip2.Reader
}

func OpenMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) Resolve(ctx context.Context, ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid ip literal: %q", ip)
	}
	rec, err := m.db.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	if rec.Country.IsoCode == "" {
		return "", fmt.Errorf("no country record for %s", ip)
	}
	return rec.Country.IsoCode, nil
}

func (m *MaxMind) Close() error { return m.db.Close() }

// API resolves countries through an ip-api.com style JSON endpoint.
type API struct {
	baseURL string
	client  *http.Client
}

func NewAPI() *API {
	return NewAPIWithURL("http://ip-api.com/json")
}

// NewAPIWithURL allows tests to point the resolver at a local server.
func NewAPIWithURL(baseURL string) *API {
	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: apiTimeout},
	}
}

type apiResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
}

func (a *API) Resolve(ctx context.Context, ip string) (string, error) {
	url := fmt.Sprintf("%s/%s?fields=status,countryCode", a.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo api request: %w", err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode geo api response: %w", err)
	}
	if parsed.Status != "success" || parsed.CountryCode == "" {
		return "", fmt.Errorf("geo api could not resolve %s", ip)
	}
	return strings.ToUpper(parsed.CountryCode), nil
}

// Multi tries resolvers in order and returns the first success.
type Multi []model.GeoResolver

func (m Multi) Resolve(ctx context.Context, ip string) (string, error) {
	var lastErr error
	for _, r := range m {
		code, err := r.Resolve(ctx, ip)
		if err == nil {
			return code, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no resolvers configured")
	}
	return "", lastErr
}
