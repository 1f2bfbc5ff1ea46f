package evaluation

// UniquenessCheck reports the fraction of distinct keys among keys,
// flagging exact duplicates; ported from synth-eval/src/quality/uniqueness.rs.
func UniquenessCheck(keys []string, minFraction float64) CheckResult {
	if len(keys) == 0 {
		return CheckResult{Name: "uniqueness", Passed: false, Detail: "no rows"}
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	fraction := float64(len(seen)) / float64(len(keys))
	return CheckResult{
		Name:   "uniqueness",
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "fraction of distinct primary keys",
	}
}

// NearDuplicateCheck reports the fraction of rows whose coarsened
// fingerprint (caller-supplied — e.g. account + amount rounded to the
// nearest unit + posting day, with the row's own id dropped) collides with
// another row's. A high collision rate beyond what exact uniqueness already
// flags usually means a template is being replayed rather than resampled.
// Ported from synth-eval/src/quality/uniqueness.rs's near-duplicate pass.
func NearDuplicateCheck(fingerprints []string, maxFraction float64) CheckResult {
	if len(fingerprints) == 0 {
		return CheckResult{Name: "near_duplicate", Passed: false, Detail: "no rows"}
	}
	counts := make(map[string]int, len(fingerprints))
	for _, f := range fingerprints {
		counts[f]++
	}
	var duplicated int
	for _, c := range counts {
		if c > 1 {
			duplicated += c
		}
	}
	fraction := float64(duplicated) / float64(len(fingerprints))
	return CheckResult{
		Name:   "near_duplicate",
		Score:  1 - fraction,
		Passed: fraction <= maxFraction,
		Detail: "fraction of rows sharing a coarsened fingerprint with another row",
	}
}

// CompletenessCheck reports the fraction of non-null values across a
// required field's column.
func CompletenessCheck(fieldName string, nonNullCount, totalCount int, minFraction float64) CheckResult {
	if totalCount == 0 {
		return CheckResult{Name: "completeness:" + fieldName, Passed: false, Detail: "no rows"}
	}
	fraction := float64(nonNullCount) / float64(totalCount)
	return CheckResult{
		Name:   "completeness:" + fieldName,
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "non-null rate for required field " + fieldName,
	}
}

// FormatConformanceCheck reports the fraction of values matching a field's
// expected format, decided by the caller-supplied validator (e.g. account
// number regex, ISO currency code set membership).
func FormatConformanceCheck(fieldName string, values []string, valid func(string) bool, minFraction float64) CheckResult {
	if len(values) == 0 {
		return CheckResult{Name: "format:" + fieldName, Passed: false, Detail: "no values"}
	}
	ok := 0
	for _, v := range values {
		if valid(v) {
			ok++
		}
	}
	fraction := float64(ok) / float64(len(values))
	return CheckResult{
		Name:   "format:" + fieldName,
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "format conformance rate for field " + fieldName,
	}
}
