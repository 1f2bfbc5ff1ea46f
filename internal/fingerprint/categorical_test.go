package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoricalStats_FrequenciesSumToOne(t *testing.T) {
	s := NewCategoricalStats(10)
	for _, v := range []string{"a", "a", "b", "c", "c", "c"} {
		s.Observe(v)
	}
	freqs := s.Frequencies()
	var total float64
	for _, f := range freqs {
		total += f
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.InDelta(t, 0.5, freqs["c"], 1e-9)
}

func TestCategoricalStats_PrunesSmallestOnOverflow(t *testing.T) {
	s := NewCategoricalStats(2)
	s.Observe("a")
	s.Observe("a")
	s.Observe("b")
	s.Observe("c") // forces a prune; "b" and "c" tie at count 1 and one of them goes

	assert.LessOrEqual(t, s.Cardinality(), 2)
	_, stillThere := s.Frequencies()["a"]
	assert.True(t, stillThere, "the most frequent category should survive pruning")
}

func TestCategoricalStats_EntropyZeroForSingleCategory(t *testing.T) {
	s := NewCategoricalStats(10)
	for i := 0; i < 5; i++ {
		s.Observe("only")
	}
	assert.Equal(t, 0.0, s.Entropy())
}

func TestCategoricalStats_EntropyMaximalForUniformSplit(t *testing.T) {
	s := NewCategoricalStats(10)
	for _, v := range []string{"a", "b", "c", "d"} {
		s.Observe(v)
	}
	assert.InDelta(t, 2.0, s.Entropy(), 1e-9) // log2(4) == 2
}
