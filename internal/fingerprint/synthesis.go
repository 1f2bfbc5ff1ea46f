package fingerprint

import "math"

// ConfigPatch is a dotted-path key/value pair mergeable over a base
// generator configuration, ported from
// datasynth-fingerprint/src/synthesis/config_synthesizer.rs.
type ConfigPatch struct {
	Path  string
	Value any
}

// ConfigSynthesizer inverts a fitted fingerprint back into generator
// configuration, e.g. recovering log-normal parameters for a role's amount
// distribution from its observed mean/variance.
type ConfigSynthesizer struct {
	RowCountFactor float64
}

func NewConfigSynthesizer(rowCountFactor float64) *ConfigSynthesizer {
	if rowCountFactor <= 0 {
		rowCountFactor = 1.0
	}
	return &ConfigSynthesizer{RowCountFactor: rowCountFactor}
}

// SynthesizeNumeric estimates log-normal (mu, sigma) parameters from a
// numeric summary's mean and variance via the standard moment-matching
// formulas, and flags a round-number-bias signal when the share of leading
// digit 1 departs from Benford's expectation (see detectRoundNumberBias).
func (s *ConfigSynthesizer) SynthesizeNumeric(path string, summary NumericSummary) []ConfigPatch {
	variance := summary.StdDev * summary.StdDev
	var mu, sigma float64
	if summary.Mean > 0 {
		sigma = math.Sqrt(math.Log(1 + variance/(summary.Mean*summary.Mean)))
		mu = math.Log(summary.Mean) - sigma*sigma/2
	}

	patches := []ConfigPatch{
		{Path: path + ".mean", Value: mu},
		{Path: path + ".stddev", Value: sigma},
		{Path: path + ".min", Value: summary.Min},
		{Path: path + ".max", Value: summary.Max},
	}

	if bias, flagged := detectRoundNumberBias(summary.Benford); flagged {
		patches = append(patches, ConfigPatch{Path: path + ".round_number_bias", Value: bias})
	}
	return patches
}

// detectRoundNumberBias flags when digit 1's observed frequency deviates
// from Benford's expected ~30.1% by more than a fixed 0.08 in either
// direction, a signal that amounts were snapped to round figures
// (high) or deliberately avoided round figures (low).
func detectRoundNumberBias(histogram [9]int64) (float64, bool) {
	var total int64
	for _, c := range histogram {
		total += c
	}
	if total == 0 {
		return 0, false
	}
	observed := float64(histogram[0]) / float64(total)
	const expected = 0.301
	const threshold = 0.08
	deviation := observed - expected
	if math.Abs(deviation) > threshold {
		return deviation, true
	}
	return deviation, false
}

// SynthesizeRowCount scales a fitted row count by the configured factor.
func (s *ConfigSynthesizer) SynthesizeRowCount(path string, fittedCount int64) ConfigPatch {
	return ConfigPatch{Path: path + ".row_count", Value: int64(float64(fittedCount) * s.RowCountFactor)}
}
