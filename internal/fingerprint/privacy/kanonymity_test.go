package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKAnonymizer_Apply_FoldsBelowThresholdIntoResidual(t *testing.T) {
	a := NewKAnonymizer(5)
	counts := map[string]int64{"common": 100, "rare": 2, "rarer": 1}

	out := a.Apply(counts)
	assert.Equal(t, int64(100), out["common"])
	_, present := out["rare"]
	assert.False(t, present)
	assert.Equal(t, int64(3), out[ResidualBucket])
}

func TestKAnonymizer_Apply_NoResidualWhenAllAboveThreshold(t *testing.T) {
	a := NewKAnonymizer(2)
	counts := map[string]int64{"a": 10, "b": 20}

	out := a.Apply(counts)
	_, present := out[ResidualBucket]
	assert.False(t, present)
}

func TestWinsorize_ClampsOutliers(t *testing.T) {
	out := Winsorize([]float64{-10, 5, 15, 100}, 0, 50)
	assert.Equal(t, []float64{0, 5, 15, 50}, out)
}
