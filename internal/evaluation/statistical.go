// Package evaluation implements the statistical, coherence, quality and
// ML-readiness battery that scores a generated dataset against configurable
// thresholds, grounded on original_source/crates/synth-eval (and
// datasynth-eval) in full. Mirrors the teacher's convention of one flat
// package with many focused files, each check a pure function over its
// inputs rather than a stateful evaluator.
package evaluation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CheckResult is one scored check in the evaluation battery.
type CheckResult struct {
	Name    string
	Score   float64
	Passed  bool
	Detail  string
}

// BenfordCheck computes a chi-square goodness-of-fit between an observed
// first-digit histogram and Benford's expected distribution, plus the mean
// absolute deviation (MAD) often reported alongside it in forensic
// accounting literature.
func BenfordCheck(observed [9]int64, chiSquareThreshold, madThreshold float64) CheckResult {
	var total int64
	for _, c := range observed {
		total += c
	}
	if total == 0 {
		return CheckResult{Name: "benford", Passed: false, Detail: "no observations"}
	}

	expected := benfordExpected()
	chiSquare := 0.0
	mad := 0.0
	for d := 0; d < 9; d++ {
		exp := expected[d] * float64(total)
		obs := float64(observed[d])
		if exp > 0 {
			chiSquare += (obs - exp) * (obs - exp) / exp
		}
		mad += math.Abs(obs/float64(total) - expected[d])
	}
	mad /= 9

	passed := chiSquare <= chiSquareThreshold && mad <= madThreshold
	return CheckResult{
		Name:   "benford",
		Score:  chiSquare,
		Passed: passed,
		Detail: "chi_square and MAD vs Benford's law first-digit distribution",
	}
}

func benfordExpected() [9]float64 {
	var out [9]float64
	for d := 1; d <= 9; d++ {
		out[d-1] = math.Log10(1 + 1/float64(d))
	}
	return out
}

// KolmogorovSmirnovCheck compares an empirical sample against a fitted
// log-normal distribution's CDF and reports the KS statistic.
func KolmogorovSmirnovCheck(sorted []float64, cdf func(float64) float64, threshold float64) CheckResult {
	n := len(sorted)
	if n == 0 {
		return CheckResult{Name: "ks_amount_distribution", Passed: false, Detail: "empty sample"}
	}
	maxDiff := 0.0
	for i, v := range sorted {
		empirical := float64(i+1) / float64(n)
		diff := math.Abs(empirical - cdf(v))
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	return CheckResult{
		Name:   "ks_amount_distribution",
		Score:  maxDiff,
		Passed: maxDiff <= threshold,
		Detail: "Kolmogorov-Smirnov statistic vs fitted log-normal",
	}
}

// LineItemCountChiSquareCheck compares the observed distribution of
// line-item counts per document against an expected distribution.
func LineItemCountChiSquareCheck(observed, expected map[int]float64, totalDocs int, threshold float64) CheckResult {
	chiSquare := 0.0
	for count, expectedFraction := range expected {
		exp := expectedFraction * float64(totalDocs)
		obs := observed[count] * float64(totalDocs)
		if exp > 0 {
			chiSquare += (obs - exp) * (obs - exp) / exp
		}
	}
	return CheckResult{
		Name:   "line_item_count_distribution",
		Score:  chiSquare,
		Passed: chiSquare <= threshold,
		Detail: "chi_square vs expected line-item count distribution",
	}
}

// TemporalCorrelationCheck compares monthly transaction-volume seasonality
// against an expected seasonal profile via Pearson correlation.
func TemporalCorrelationCheck(monthlyVolumes, expectedSeasonalProfile []float64, minCorrelation float64) CheckResult {
	if len(monthlyVolumes) != len(expectedSeasonalProfile) || len(monthlyVolumes) == 0 {
		return CheckResult{Name: "temporal_seasonality", Passed: false, Detail: "mismatched or empty series"}
	}
	corr := stat.Correlation(monthlyVolumes, expectedSeasonalProfile, nil)
	return CheckResult{
		Name:   "temporal_seasonality",
		Score:  corr,
		Passed: corr >= minCorrelation,
		Detail: "Pearson correlation vs expected seasonal profile",
	}
}
