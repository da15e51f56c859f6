// Package rank orders passing results for the final report.
package rank

import (
	"sort"

	"github.com/August26/ipopt-go/internal/model"
)

// Results sorts in place by ascending latency, breaking ties by pool
// priority and then by IP literal so identical inputs always produce
// identical output. The slice is returned for convenience.
func Results(rs []model.PassingResult) []model.PassingResult {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Latency != rs[j].Latency {
			return rs[i].Latency < rs[j].Latency
		}
		if rs[i].PoolPriority != rs[j].PoolPriority {
			return rs[i].PoolPriority < rs[j].PoolPriority
		}
		return rs[i].Address.IP < rs[j].Address.IP
	})
	return rs
}
