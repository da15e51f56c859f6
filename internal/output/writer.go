package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/August26/ipopt-go/internal/model"
)

// FormatNode renders one result as a report line:
//
//	<ip>:<port>#<country_code> <pool_label> <latency_ms>ms
func FormatNode(r model.PassingResult) string {
	return fmt.Sprintf("%s:%d#%s %s %dms", r.Address.IP, r.Port, r.Country, r.Pool, r.LatencyMs())
}

// WriteNodes writes the ranked results as plain report lines, one per
// result, overwriting any previous report.
func WriteNodes(path string, results []model.PassingResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, r := range results {
		if _, err := fmt.Fprintln(f, FormatNode(r)); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes results plus run statistics for automation callers.
func WriteJSON(path string, results []model.PassingResult, stats model.RunStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	type node struct {
		IP        string `json:"ip"`
		Port      int    `json:"port"`
		Country   string `json:"country"`
		Pool      string `json:"pool"`
		LatencyMs int64  `json:"latency_ms"`
	}
	nodes := make([]node, 0, len(results))
	for _, r := range results {
		nodes = append(nodes, node{
			IP:        r.Address.IP,
			Port:      r.Port,
			Country:   r.Country,
			Pool:      r.Pool,
			LatencyMs: r.LatencyMs(),
		})
	}

	payload := struct {
		Results []node         `json:"results"`
		Summary model.RunStats `json:"summary"`
	}{
		Results: nodes,
		Summary: stats,
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// PrintResultsTable prints a human-readable table of the ranked results.
func PrintResultsTable(w io.Writer, results []model.PassingResult) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "IP:PORT\tCOUNTRY\tPOOL\tLAT(ms)")
	for _, r := range results {
		fmt.Fprintf(tw, "%s:%d\t%s\t%s\t%d\n",
			r.Address.IP,
			r.Port,
			r.Country,
			r.Pool,
			r.LatencyMs(),
		)
	}
	tw.Flush()
}

// PrintSummary prints the aggregated run stats.
func PrintSummary(w io.Writer, stats model.RunStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Target count:        %d\n", stats.TargetCount)
	fmt.Fprintf(w, "  Passing addresses:   %d\n", stats.Passing)
	fmt.Fprintf(w, "  Addresses probed:    %d\n", stats.Probed)
	fmt.Fprintf(w, "  Probe failures:      %d\n", stats.Failed)
	fmt.Fprintf(w, "  Unresolved country:  %d\n", stats.Unresolved)
	fmt.Fprintf(w, "  Pools tried:         %d (skipped %d)\n", stats.PoolsTried, stats.PoolsSkipped)
	fmt.Fprintf(w, "  Avg latency:         %.1f ms\n", stats.AvgLatencyMs)
	fmt.Fprintf(w, "  Run time:            %.2f s\n", float64(stats.DurationMs)/1000.0)
	if stats.PoolsExhausted {
		fmt.Fprintf(w, "  NOTE: all pools exhausted before reaching the target (%d/%d)\n",
			stats.Passing, stats.TargetCount)
	}
}
