package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBenfordCheck_PassesForBenfordCompliantData(t *testing.T) {
	observed := [9]int64{301, 176, 125, 97, 79, 67, 58, 51, 46}
	result := BenfordCheck(observed, 15.0, 0.02)
	assert.True(t, result.Passed)
	assert.Equal(t, "benford", result.Name)
}

func TestBenfordCheck_FailsForUniformDigits(t *testing.T) {
	observed := [9]int64{111, 111, 111, 111, 111, 111, 111, 111, 112}
	result := BenfordCheck(observed, 5.0, 0.01)
	assert.False(t, result.Passed)
}

func TestBenfordCheck_NoObservationsFails(t *testing.T) {
	result := BenfordCheck([9]int64{}, 100, 100)
	assert.False(t, result.Passed)
}

func TestKolmogorovSmirnovCheck_IdenticalDistributionPasses(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	cdf := func(v float64) float64 { return v / 5.0 }
	result := KolmogorovSmirnovCheck(sorted, cdf, 0.5)
	assert.True(t, result.Passed)
}

func TestKolmogorovSmirnovCheck_EmptySampleFails(t *testing.T) {
	result := KolmogorovSmirnovCheck(nil, func(float64) float64 { return 0 }, 1.0)
	assert.False(t, result.Passed)
}

func TestLineItemCountChiSquareCheck_MatchingDistributionPasses(t *testing.T) {
	expected := map[int]float64{2: 0.5, 3: 0.5}
	observed := map[int]float64{2: 0.5, 3: 0.5}
	result := LineItemCountChiSquareCheck(observed, expected, 1000, 5.0)
	assert.True(t, result.Passed)
	assert.InDelta(t, 0.0, result.Score, 1e-9)
}

func TestTemporalCorrelationCheck_PerfectCorrelationPasses(t *testing.T) {
	monthly := []float64{10, 20, 30, 40}
	expected := []float64{1, 2, 3, 4}
	result := TemporalCorrelationCheck(monthly, expected, 0.9)
	assert.True(t, result.Passed)
	assert.True(t, math.Abs(result.Score-1.0) < 1e-9)
}

func TestTemporalCorrelationCheck_MismatchedLengthsFails(t *testing.T) {
	result := TemporalCorrelationCheck([]float64{1, 2}, []float64{1}, 0.5)
	assert.False(t, result.Passed)
}
