package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/rawblock/datasynth-engine/internal/core"
)

// signableManifest is the exact payload that gets canonicalized and signed:
// Manifest without Signature and without Correlations, so the correlation
// matrices are not covered by the signature. Follows
// datasynth-fingerprint/src/io/signing.rs's strip-then-sign sequence.
type signableManifest struct {
	Format        string
	Version       string
	GeneratedAt   string
	SourceDataset string
	Components    []ComponentChecksum
	Numeric       map[string]NumericSummary
	Categorical   map[string]CategoricalSummary
	Privacy       PrivacyAuditSummary
}

func (m *Manifest) signable() signableManifest {
	return signableManifest{
		Format:        m.Format,
		Version:       m.Version,
		GeneratedAt:   m.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		SourceDataset: m.SourceDataset,
		Components:    m.Components,
		Numeric:       m.Numeric,
		Categorical:   m.Categorical,
		Privacy:       m.Privacy,
	}
}

// Sign computes the HMAC-SHA256 over the manifest's canonicalized
// signature-stripped form and attaches it. HMAC-SHA256 here is stdlib
// crypto/hmac+crypto/sha256, not a third-party library — see DESIGN.md for
// why this one corner stays on the standard library.
func (m *Manifest) Sign(keyID string, key []byte) error {
	canonical, err := Canonicalize(m.signable())
	if err != nil {
		return core.Wrap(core.KindInvalidFormat, "canonicalizing manifest for signing", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	sig := mac.Sum(nil)
	m.Signature = &SignatureMetadata{
		Algorithm: "HMAC-SHA256",
		KeyID:     keyID,
		Signature: hex.EncodeToString(sig),
	}
	return nil
}

// Verify recomputes the HMAC over the manifest's signature-stripped,
// canonicalized form and compares it against the attached signature in
// constant time.
func (m *Manifest) Verify(key []byte) (bool, error) {
	if m.Signature == nil {
		return false, core.New(core.KindInvalidFormat, "manifest has no signature")
	}
	canonical, err := Canonicalize(m.signable())
	if err != nil {
		return false, core.Wrap(core.KindInvalidFormat, "canonicalizing manifest for verification", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	expected := mac.Sum(nil)

	actual, err := hex.DecodeString(m.Signature.Signature)
	if err != nil {
		return false, core.Wrap(core.KindInvalidFormat, "decoding signature hex", err)
	}
	return subtle.ConstantTimeCompare(expected, actual) == 1, nil
}
