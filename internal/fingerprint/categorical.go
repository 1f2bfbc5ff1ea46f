package fingerprint

import "math"

// CategoricalStats accumulates a capped frequency table for one categorical
// column with a lossy-counting prune on overflow, ported from
// datasynth-fingerprint/src/extraction/streaming.rs.
type CategoricalStats struct {
	MaxCategories int
	counts        map[string]int64
	total         int64
	prunes        int64
}

func NewCategoricalStats(maxCategories int) *CategoricalStats {
	return &CategoricalStats{MaxCategories: maxCategories, counts: make(map[string]int64)}
}

// Observe folds one category value into the frequency table, pruning the
// smallest bucket once the table exceeds MaxCategories.
func (s *CategoricalStats) Observe(value string) {
	s.total++
	s.counts[value]++
	if len(s.counts) > s.MaxCategories {
		s.pruneSmallest()
	}
}

func (s *CategoricalStats) pruneSmallest() {
	var minKey string
	minCount := int64(math.MaxInt64)
	for k, c := range s.counts {
		if c < minCount {
			minCount = c
			minKey = k
		}
	}
	delete(s.counts, minKey)
	s.prunes++
}

// Frequencies returns each surviving category's observed proportion.
func (s *CategoricalStats) Frequencies() map[string]float64 {
	out := make(map[string]float64, len(s.counts))
	if s.total == 0 {
		return out
	}
	for k, c := range s.counts {
		out[k] = float64(c) / float64(s.total)
	}
	return out
}

// Entropy returns the Shannon entropy (base 2) of the surviving categories.
func (s *CategoricalStats) Entropy() float64 {
	var ent float64
	for _, f := range s.Frequencies() {
		if f <= 0 {
			continue
		}
		ent -= f * math.Log2(f)
	}
	return ent
}

// Cardinality returns the number of surviving distinct categories.
func (s *CategoricalStats) Cardinality() int { return len(s.counts) }
