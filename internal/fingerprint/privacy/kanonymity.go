package privacy

// KAnonymizer suppresses categorical buckets whose observed count falls
// below k, folding them into a residual "__OTHER__" bucket, ported from
// datasynth-fingerprint/src/privacy/kanonymity.rs.
type KAnonymizer struct {
	K int
}

func NewKAnonymizer(k int) *KAnonymizer { return &KAnonymizer{K: k} }

const ResidualBucket = "__OTHER__"

// Apply returns a copy of counts with every bucket below K folded into the
// residual bucket.
func (a *KAnonymizer) Apply(counts map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(counts))
	var residual int64
	for k, c := range counts {
		if c < int64(a.K) {
			residual += c
			continue
		}
		out[k] = c
	}
	if residual > 0 {
		out[ResidualBucket] += residual
	}
	return out
}

// Winsorize clamps values below loBound or above hiBound to those bounds,
// ported from the same module's
// winsorization pass used alongside k-anonymity on numeric columns.
func Winsorize(values []float64, loBound, hiBound float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v < loBound:
			out[i] = loBound
		case v > hiBound:
			out[i] = hiBound
		default:
			out[i] = v
		}
	}
	return out
}
