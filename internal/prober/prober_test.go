package prober

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

func TestTCPProbe_Success(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	lat, err := NewTCP().Probe(context.Background(), model.Address{IP: host}, port, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if lat <= 0 {
		t.Fatalf("expected positive latency, got %v", lat)
	}
}

func TestTCPProbe_Refused(t *testing.T) {
	// bind then close to get a port that refuses connections
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	ln.Close()

	if _, err := NewTCP().Probe(context.Background(), model.Address{IP: host}, port, 1*time.Second); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestTCPProbe_AddressPortOverridesRunPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	// run port 1 would fail; the address's own port must win
	addr := model.Address{IP: host, Port: port}
	if _, err := NewTCP().Probe(context.Background(), addr, 1, 2*time.Second); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestHTTPProbe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	host, portStr, _ := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	port, _ := strconv.Atoi(portStr)

	lat, err := NewHTTP("http", "/").Probe(context.Background(), model.Address{IP: host}, port, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if lat <= 0 {
		t.Fatalf("expected positive latency, got %v", lat)
	}
}

func TestHTTPProbe_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	host, portStr, _ := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	port, _ := strconv.Atoi(portStr)

	if _, err := NewHTTP("http", "/").Probe(context.Background(), model.Address{IP: host}, port, 2*time.Second); err == nil {
		t.Fatalf("expected error for 5xx response")
	}
}
