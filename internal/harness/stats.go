package harness

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of per-call times in a sampled batch.
type Summary struct {
	Samples int           `json:"samples"`
	Mean    time.Duration `json:"mean_ns"`
	StdDev  time.Duration `json:"stddev_ns"`
	Min     time.Duration `json:"min_ns"`
	P50     time.Duration `json:"p50_ns"`
	P95     time.Duration `json:"p95_ns"`
	P99     time.Duration `json:"p99_ns"`
	Max     time.Duration `json:"max_ns"`
}

// Summarize computes a Summary from per-call times in seconds.
func Summarize(seconds []float64) Summary {
	if len(seconds) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(seconds))
	copy(sorted, seconds)
	sort.Float64s(sorted)

	s := Summary{
		Samples: len(sorted),
		Mean:    toDuration(stat.Mean(sorted, nil)),
		Min:     toDuration(sorted[0]),
		P50:     toDuration(stat.Quantile(0.50, stat.Empirical, sorted, nil)),
		P95:     toDuration(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		P99:     toDuration(stat.Quantile(0.99, stat.Empirical, sorted, nil)),
		Max:     toDuration(sorted[len(sorted)-1]),
	}
	if len(sorted) > 1 {
		s.StdDev = toDuration(stat.StdDev(sorted, nil))
	}
	return s
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
