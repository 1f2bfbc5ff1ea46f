package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationMatrix_IndexIsSymmetric(t *testing.T) {
	m := NewCorrelationMatrix([]string{"a", "b", "c"})
	m.Set(0, 2, 0.42)
	assert.Equal(t, 0.42, m.Get(0, 2))
	assert.Equal(t, 0.42, m.Get(2, 0))
}

func TestCorrelationMatrix_DiagonalIsOne(t *testing.T) {
	m := NewCorrelationMatrix([]string{"a", "b"})
	assert.Equal(t, 1.0, m.Get(0, 0))
	assert.Equal(t, 1.0, m.Get(1, 1))
}

func TestCorrelationExtractor_Extract_PerfectlyCorrelatedColumns(t *testing.T) {
	e := NewCorrelationExtractor()
	columns := map[string][]float64{
		"x": {1, 2, 3, 4, 5},
		"y": {2, 4, 6, 8, 10},
	}
	m := e.Extract(columns)
	assert.Equal(t, []string{"x", "y"}, m.Columns)
	assert.InDelta(t, 1.0, m.Get(0, 1), 1e-9)
}

func TestCorrelationExtractor_Extract_UncorrelatedColumns(t *testing.T) {
	e := NewCorrelationExtractor()
	columns := map[string][]float64{
		"x": {1, 2, 3, 4, 5, 6},
		"y": {3, 1, 4, 1, 5, 9},
	}
	m := e.Extract(columns)
	coeff := m.Get(0, 1)
	assert.GreaterOrEqual(t, coeff, -1.0)
	assert.LessOrEqual(t, coeff, 1.0)
}
