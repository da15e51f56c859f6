// Package prober implements the raw connectivity primitives: a plain
// TCP connect (optionally through an upstream SOCKS5 proxy) and a
// minimal HTTP round trip. A probe measures the latency of a single
// attempt; retry policy lives in the scheduler.
package prober

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/August26/ipopt-go/internal/model"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// TCP measures the time to complete a TCP handshake with the address.
type TCP struct {
	dial dialFunc
}

func NewTCP() *TCP {
	d := &net.Dialer{KeepAlive: -1}
	return &TCP{dial: d.DialContext}
}

// NewTCPViaSOCKS5 routes probe connections through an upstream SOCKS5
// proxy, for runs from hosts without direct egress.
func NewTCPViaSOCKS5(proxyAddr string) (*TCP, error) {
	dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, &net.Dialer{KeepAlive: -1})
	if err != nil {
		return nil, err
	}
	cd, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("socks5 dialer does not support contexts")
	}
	return &TCP{dial: cd.DialContext}, nil
}

func (t *TCP) Probe(ctx context.Context, addr model.Address, port int, timeout time.Duration) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	conn, err := t.dial(ctx, "tcp", probeTarget(addr, port))
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)
	_ = conn.Close()
	return latency, nil
}

// probeTarget prefers the port the source attached to the address,
// falling back to the run port.
func probeTarget(addr model.Address, port int) string {
	if addr.Port > 0 {
		port = addr.Port
	}
	return net.JoinHostPort(addr.IP, strconv.Itoa(port))
}
