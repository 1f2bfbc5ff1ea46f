// Package fingerprint extracts, signs and later resynthesizes a statistical
// fingerprint of a generated dataset, grounded on
// original_source/crates/datasynth-fingerprint in full.
package fingerprint

import (
	"math"
	"sort"
)

// NumericStats accumulates streaming statistics for one numeric column
// using Welford's algorithm, a capacity-bounded reservoir (Algorithm R) for
// percentile estimation, and a Benford first-digit histogram, ported from
// datasynth-fingerprint/src/extraction/streaming.rs.
type NumericStats struct {
	Count    int64
	mean     float64
	m2       float64
	Min      float64
	Max      float64
	Zeros    int64
	Negatives int64

	benford [10]int64 // index 1..9 used; 0 unused

	reservoir []float64
	capacity  int
	seen      int64
	nextRand  func() float64
}

// NewNumericStats builds an accumulator with a reservoir of the given
// capacity; nextRand must return uniform draws in [0,1) (and should come
// from a seed.Stream so fingerprinting is reproducible against the data it
// describes).
func NewNumericStats(capacity int, nextRand func() float64) *NumericStats {
	return &NumericStats{
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		capacity: capacity,
		nextRand: nextRand,
	}
}

// Observe folds one value into the running statistics.
func (s *NumericStats) Observe(v float64) {
	s.Count++
	delta := v - s.mean
	s.mean += delta / float64(s.Count)
	delta2 := v - s.mean
	s.m2 += delta * delta2

	if v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	if v == 0 {
		s.Zeros++
	}
	if v < 0 {
		s.Negatives++
	}

	if digit := firstDigit(v); digit >= 1 && digit <= 9 {
		s.benford[digit]++
	}

	s.seen++
	if len(s.reservoir) < s.capacity {
		s.reservoir = append(s.reservoir, v)
	} else if s.nextRand != nil {
		j := int(s.nextRand() * float64(s.seen))
		if j < s.capacity {
			s.reservoir[j] = v
		}
	}
}

// Mean returns the running mean.
func (s *NumericStats) Mean() float64 { return s.mean }

// Variance returns the unbiased sample variance (Bessel's correction).
func (s *NumericStats) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.m2 / float64(s.Count-1)
}

func (s *NumericStats) StdDev() float64 { return math.Sqrt(s.Variance()) }

// BenfordHistogram returns the observed frequency of each leading digit 1-9.
func (s *NumericStats) BenfordHistogram() [9]int64 {
	var out [9]int64
	for d := 1; d <= 9; d++ {
		out[d-1] = s.benford[d]
	}
	return out
}

// Percentile estimates the p-th percentile (0..100) from the reservoir.
func (s *NumericStats) Percentile(p float64) float64 {
	if len(s.reservoir) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.reservoir...)
	sort.Float64s(sorted)
	idx := int(p / 100 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func firstDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	for v >= 10 {
		v /= 10
	}
	for v < 1 {
		v *= 10
	}
	return int(v)
}
