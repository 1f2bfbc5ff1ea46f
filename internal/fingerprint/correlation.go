package fingerprint

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix stores Pearson coefficients for n columns as a
// flattened upper-triangular array with position-derived indexing, ported
// from datasynth-fingerprint/src/models/correlation.rs's index arithmetic —
// avoids per-cell map overhead for what is otherwise an n^2/2 table.
type CorrelationMatrix struct {
	Columns []string
	n       int
	flat    []float64
}

// NewCorrelationMatrix allocates a matrix for the given column set.
func NewCorrelationMatrix(columns []string) *CorrelationMatrix {
	n := len(columns)
	return &CorrelationMatrix{
		Columns: columns,
		n:       n,
		flat:    make([]float64, n*(n-1)/2),
	}
}

// index maps (i, j), i<j, into the flattened upper-triangular array.
func (m *CorrelationMatrix) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	// Position of row i's first element in the flattened array, offset by
	// how far j is past the diagonal.
	return i*m.n - i*(i+1)/2 + (j - i - 1)
}

// Set records the coefficient between columns i and j (i != j).
func (m *CorrelationMatrix) Set(i, j int, coefficient float64) {
	if i == j {
		return
	}
	m.flat[m.index(i, j)] = coefficient
}

// Get returns the coefficient between columns i and j (1.0 if i == j).
func (m *CorrelationMatrix) Get(i, j int) float64 {
	if i == j {
		return 1.0
	}
	return m.flat[m.index(i, j)]
}

// CorrelationExtractor computes a CorrelationMatrix across a set of
// same-length numeric columns using gonum's Pearson implementation.
type CorrelationExtractor struct{}

func NewCorrelationExtractor() *CorrelationExtractor { return &CorrelationExtractor{} }

// Extract computes pairwise Pearson correlation across columns (name ->
// values, all equal length) and returns the flattened matrix.
func (e *CorrelationExtractor) Extract(columns map[string][]float64) *CorrelationMatrix {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	// Deterministic column ordering: the caller-supplied map has no
	// guaranteed iteration order, but the matrix's index arithmetic depends
	// on a stable Columns ordering, so sort names before building it.
	sort.Strings(names)

	m := NewCorrelationMatrix(names)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			coeff := stat.Correlation(columns[names[i]], columns[names[j]], nil)
			m.Set(i, j, coeff)
		}
	}
	return m
}
