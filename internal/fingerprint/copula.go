package fingerprint

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// EmpiricalCDF is a column's empirical cumulative distribution function,
// built once from its observed (or reservoir-sampled) values, ported from
// datasynth-fingerprint/src/synthesis/copula.rs.
type EmpiricalCDF struct {
	sorted []float64
}

func NewEmpiricalCDF(values []float64) *EmpiricalCDF {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return &EmpiricalCDF{sorted: sorted}
}

// CDF returns P(X <= v).
func (e *EmpiricalCDF) CDF(v float64) float64 {
	if len(e.sorted) == 0 {
		return 0
	}
	idx := sort.SearchFloat64s(e.sorted, v)
	return float64(idx) / float64(len(e.sorted))
}

// Quantile returns the value at cumulative probability p (0..1).
func (e *EmpiricalCDF) Quantile(p float64) float64 {
	if len(e.sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(e.sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(e.sorted) {
		idx = len(e.sorted) - 1
	}
	return e.sorted[idx]
}

// GaussianCopula pairs per-column empirical marginals with a correlation
// matrix. Sample preserves each column's own distribution shape but does
// not apply Corr, so resampled columns are independent of each other.
type GaussianCopula struct {
	Columns  []string
	Marginal map[string]*EmpiricalCDF
	Corr     *CorrelationMatrix
}

// NewGaussianCopula fits marginals from values and pairs them with a
// precomputed correlation matrix.
func NewGaussianCopula(values map[string][]float64, corr *CorrelationMatrix) *GaussianCopula {
	marginal := make(map[string]*EmpiricalCDF, len(values))
	for name, vs := range values {
		marginal[name] = NewEmpiricalCDF(vs)
	}
	return &GaussianCopula{Columns: corr.Columns, Marginal: marginal, Corr: corr}
}

// Sample draws one row by mapping each standard-normal draw through the
// normal CDF and then the column's empirical quantile. The draws are not
// correlated through Corr, so the row's columns are independent.
// normalDraws must supply one N(0,1) sample per column, in Columns order.
func (g *GaussianCopula) Sample(normalDraws []float64) map[string]float64 {
	std := distuv.Normal{Mu: 0, Sigma: 1}
	out := make(map[string]float64, len(g.Columns))
	for i, name := range g.Columns {
		u := std.CDF(normalDraws[i])
		out[name] = g.Marginal[name].Quantile(u)
	}
	return out
}
