package prober

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

// HTTP measures a full minimal HTTP round trip against the address,
// for pools whose entries front an HTTP service rather than a raw
// TCP listener. Certificates are not verified: the probe targets IP
// literals that can never match a certificate name.
type HTTP struct {
	scheme string
	path   string
}

func NewHTTP(scheme, path string) *HTTP {
	if path == "" {
		path = "/"
	}
	return &HTTP{scheme: scheme, path: path}
}

func (h *HTTP) Probe(ctx context.Context, addr model.Address, port int, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := probeTarget(addr, port)
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := &net.Dialer{KeepAlive: -1}
			return d.DialContext(ctx, network, target)
		},
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout: timeout,
		DisableKeepAlives:   true,
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{Transport: transport}

	url := fmt.Sprintf("%s://%s%s", h.scheme, target, h.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return 0, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}
	return latency, nil
}
