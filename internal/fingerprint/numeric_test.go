package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericStats_MeanAndStdDev(t *testing.T) {
	s := NewNumericStats(100, nil)
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, v := range values {
		s.Observe(v)
	}
	assert.InDelta(t, 5.0, s.Mean(), 1e-9)
	assert.InDelta(t, 2.138, s.StdDev(), 1e-3)
	assert.Equal(t, int64(len(values)), s.Count)
}

func TestNumericStats_MinMaxZerosNegatives(t *testing.T) {
	s := NewNumericStats(10, nil)
	for _, v := range []float64{-5, 0, 3, 0, 8} {
		s.Observe(v)
	}
	assert.Equal(t, -5.0, s.Min)
	assert.Equal(t, 8.0, s.Max)
	assert.Equal(t, int64(2), s.Zeros)
	assert.Equal(t, int64(1), s.Negatives)
}

func TestNumericStats_BenfordHistogramTalliesFirstDigit(t *testing.T) {
	s := NewNumericStats(10, nil)
	for _, v := range []float64{123, 19, 987, -154} {
		s.Observe(v)
	}
	hist := s.BenfordHistogram()
	assert.Equal(t, int64(3), hist[0]) // digit 1: 123, 19, 154
	assert.Equal(t, int64(1), hist[8]) // digit 9: 987
}

func TestNumericStats_ReservoirCapsAtCapacity(t *testing.T) {
	i := 0
	seq := []float64{0.9, 0.1, 0.5, 0.2, 0.8}
	nextRand := func() float64 {
		v := seq[i%len(seq)]
		i++
		return v
	}
	s := NewNumericStats(3, nextRand)
	for v := 1; v <= 20; v++ {
		s.Observe(float64(v))
	}
	assert.Len(t, s.reservoir, 3)
}

func TestNumericStats_PercentileEmptyReservoirIsZero(t *testing.T) {
	s := NewNumericStats(10, nil)
	assert.Equal(t, 0.0, s.Percentile(50))
}

func TestNumericStats_PercentileOrdersReservoir(t *testing.T) {
	s := NewNumericStats(10, nil)
	for _, v := range []float64{5, 1, 9, 3, 7} {
		s.Observe(v)
	}
	assert.Equal(t, 1.0, s.Percentile(0))
	assert.Equal(t, 9.0, s.Percentile(100))
}

func TestFirstDigit(t *testing.T) {
	cases := map[float64]int{
		123:    1,
		0.0456: 4,
		9999:   9,
		-42:    4,
		0:      0,
		0.1:    1,
	}
	for v, want := range cases {
		got := firstDigit(v)
		assert.Equal(t, want, got, "firstDigit(%v)", v)
	}
}
