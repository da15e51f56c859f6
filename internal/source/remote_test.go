package source

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteCIDR_FetchAndExpand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# cloudflare ranges\n10.0.0.0/24\n\n192.168.1.0/24\n")
	}))
	defer srv.Close()

	src := NewRemoteCIDR("official", srv.URL, nil, 16, rand.New(rand.NewSource(1)), discardLogger())
	addrs := src.Fetch(context.Background())
	if len(addrs) != 16 {
		t.Fatalf("expected 16 sampled addresses, got %d", len(addrs))
	}
	for _, a := range addrs {
		if a.Pool != "official" {
			t.Fatalf("pool label missing: %#v", a)
		}
		if a.Port != 0 {
			t.Fatalf("CIDR candidates carry no port of their own: %#v", a)
		}
	}
}

func TestRemoteCIDR_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewRemoteCIDR("official", srv.URL, []string{"10.9.0.0/24"}, 8, rand.New(rand.NewSource(1)), discardLogger())
	addrs := src.Fetch(context.Background())
	if len(addrs) != 8 {
		t.Fatalf("fallback blocks must be used on fetch failure, got %d", len(addrs))
	}
}

func TestRemoteCIDR_NoFallbackYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewRemoteCIDR("cm", srv.URL, nil, 8, rand.New(rand.NewSource(1)), discardLogger())
	if addrs := src.Fetch(context.Background()); len(addrs) != 0 {
		t.Fatalf("expected empty fetch, got %d", len(addrs))
	}
}

func TestRemoteList_FiltersPortAndComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `# reverse proxy entries
1.2.3.4:443#us
5.6.7.8:8443
9.9.9.9:443
garbage line
10.10.10.10:443#Frankfurt DC
`)
	}))
	defer srv.Close()

	src := NewRemoteList("proxyip", srv.URL, 443, 64, rand.New(rand.NewSource(1)), discardLogger())
	addrs := src.Fetch(context.Background())
	if len(addrs) != 3 {
		t.Fatalf("expected the three port-443 entries, got %d: %v", len(addrs), addrs)
	}
	byIP := make(map[string]int)
	for _, a := range addrs {
		byIP[a.IP] = a.Port
		if a.Pool != "proxyip" {
			t.Fatalf("pool label missing: %#v", a)
		}
	}
	if _, ok := byIP["5.6.7.8"]; ok {
		t.Fatalf("entry on the wrong port must be filtered out")
	}
	if addrs[0].IP == "1.2.3.4" && addrs[0].Country != "US" {
		t.Fatalf("country annotation not kept: %#v", addrs[0])
	}
}

func TestRemoteList_CapsBySampling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 1; i <= 50; i++ {
			fmt.Fprintf(w, "10.0.0.%d:443\n", i)
		}
	}))
	defer srv.Close()

	src := NewRemoteList("proxyip", srv.URL, 443, 10, rand.New(rand.NewSource(1)), discardLogger())
	addrs := src.Fetch(context.Background())
	if len(addrs) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(addrs))
	}
}
