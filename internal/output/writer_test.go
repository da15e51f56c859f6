package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/August26/ipopt-go/internal/model"
)

func sample() []model.PassingResult {
	return []model.PassingResult{
		{
			Address:      model.Address{IP: "104.16.1.2"},
			Country:      "US",
			Port:         443,
			Pool:         "official",
			PoolPriority: 0,
			Latency:      30 * time.Millisecond,
		},
		{
			Address:      model.Address{IP: "172.64.9.8"},
			Country:      "US",
			Port:         8443,
			Pool:         "proxyip",
			PoolPriority: 4,
			Latency:      51 * time.Millisecond,
		},
	}
}

func TestFormatNode(t *testing.T) {
	got := FormatNode(sample()[0])
	want := "104.16.1.2:443#US official 30ms"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriteNodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.txt")
	if err := WriteNodes(path, sample()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}
	if lines[1] != "172.64.9.8:8443#US proxyip 51ms" {
		t.Fatalf("bad second line: %q", lines[1])
	}
}

func TestWriteNodes_EmptyProducesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.txt")
	if err := WriteNodes(path, nil); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty file, got %q", string(data))
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.json")
	stats := model.RunStats{TargetCount: 2, Passing: 2}
	if err := WriteJSON(path, sample(), stats); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{`"ip": "104.16.1.2"`, `"latency_ms": 51`, `"target_count": 2`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("json output missing %q:\n%s", want, string(data))
		}
	}
}
