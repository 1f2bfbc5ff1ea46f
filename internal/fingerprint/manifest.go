package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Format is the fixed literal tag every manifest carries, identifying the
// container as a datasynth fingerprint artifact (ported verbatim from
// datasynth-fingerprint/src/models/manifest.rs).
const Format = "dsf"

// SchemaVersion is the manifest's semver. Bumping the minor version must
// remain backward-readable; a major bump may not.
const SchemaVersion = "1.0.0"

// ComponentChecksum records the SHA-256 of one serialized manifest
// component, letting a verifier detect tampering with a single component
// without needing to re-verify the whole artifact.
type ComponentChecksum struct {
	Name     string
	SHA256Hex string
}

// SignatureMetadata carries the HMAC over the canonicalized manifest.
type SignatureMetadata struct {
	Algorithm string // always "HMAC-SHA256"
	KeyID     string
	Signature string // hex-encoded
}

// Manifest is the top-level, versioned, signable fingerprint artifact.
type Manifest struct {
	Format        string
	Version       string
	GeneratedAt   time.Time
	SourceDataset string
	Components    []ComponentChecksum
	Numeric       map[string]NumericSummary
	Categorical   map[string]CategoricalSummary
	Correlations  map[string]*CorrelationMatrix
	Privacy       PrivacyAuditSummary
	Signature     *SignatureMetadata
}

// NumericSummary is the serializable projection of NumericStats.
type NumericSummary struct {
	Count    int64
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	P50      float64
	P90      float64
	P99      float64
	Benford  [9]int64
}

func SummarizeNumeric(s *NumericStats) NumericSummary {
	return NumericSummary{
		Count:   s.Count,
		Mean:    s.Mean(),
		StdDev:  s.StdDev(),
		Min:     s.Min,
		Max:     s.Max,
		P50:     s.Percentile(50),
		P90:     s.Percentile(90),
		P99:     s.Percentile(99),
		Benford: s.BenfordHistogram(),
	}
}

// CategoricalSummary is the serializable projection of CategoricalStats.
type CategoricalSummary struct {
	Cardinality int
	Entropy     float64
	Frequencies map[string]float64
}

func SummarizeCategorical(s *CategoricalStats) CategoricalSummary {
	return CategoricalSummary{
		Cardinality: s.Cardinality(),
		Entropy:     s.Entropy(),
		Frequencies: s.Frequencies(),
	}
}

// PrivacyAuditSummary is the serializable projection of a PrivacyAudit.
type PrivacyAuditSummary struct {
	EpsilonSpent float64
	EpsilonLimit float64
	Actions      []string
}

// componentChecksum computes the SHA-256 of arbitrary serialized bytes,
// used to populate Manifest.Components so a verifier can check one
// component in isolation.
func componentChecksum(name string, data []byte) ComponentChecksum {
	sum := sha256.Sum256(data)
	return ComponentChecksum{Name: name, SHA256Hex: hex.EncodeToString(sum[:])}
}
