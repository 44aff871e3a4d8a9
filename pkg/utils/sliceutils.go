// pkg/utils/sliceutils.go
package utils

import (
	"math"
	"sort"
)

func CalculatePercentile(values []int, percentile float64) int {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	idx := int(math.Floor(float64(len(sorted)) * percentile / 100.0))

	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

type Stats struct {
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Mean    float64 `json:"mean"`
	Median  int     `json:"median"`
	StdDev  float64 `json:"stdDev"`
	P95     int     `json:"p95"`
	Samples int     `json:"samples"`
}

func CalculateStats(values []int) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	var total int
	for _, v := range sorted {
		total += v
	}

	mean := float64(total) / float64(len(sorted))

	var sumSquares float64
	for _, v := range sorted {
		diff := float64(v) - mean
		sumSquares += diff * diff
	}

	stdDev := math.Sqrt(sumSquares / float64(len(sorted)))

	p50Idx := int(float64(len(sorted)) * 0.5)
	p95Idx := int(float64(len(sorted)) * 0.95)

	if p50Idx >= len(sorted) {
		p50Idx = len(sorted) - 1
	}
	if p95Idx >= len(sorted) {
		p95Idx = len(sorted) - 1
	}

	return Stats{
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Mean:    mean,
		Median:  sorted[p50Idx],
		StdDev:  stdDev,
		P95:     sorted[p95Idx],
		Samples: len(sorted),
	}
}
