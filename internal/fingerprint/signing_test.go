package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *Manifest {
	return &Manifest{
		Format:        Format,
		Version:       SchemaVersion,
		GeneratedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceDataset: "run-1234",
		Numeric: map[string]NumericSummary{
			"amount": {Count: 10, Mean: 100, StdDev: 5},
		},
	}
}

func TestManifest_SignThenVerifySucceeds(t *testing.T) {
	m := testManifest()
	key := []byte("test-signing-key")

	require.NoError(t, m.Sign("key-1", key))
	require.NotNil(t, m.Signature)
	assert.Equal(t, "HMAC-SHA256", m.Signature.Algorithm)

	ok, err := m.Verify(key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManifest_VerifyFailsOnTamperedContent(t *testing.T) {
	m := testManifest()
	key := []byte("test-signing-key")
	require.NoError(t, m.Sign("key-1", key))

	m.SourceDataset = "tampered"
	ok, err := m.Verify(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifest_VerifyFailsOnWrongKey(t *testing.T) {
	m := testManifest()
	require.NoError(t, m.Sign("key-1", []byte("key-a")))

	ok, err := m.Verify([]byte("key-b"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManifest_VerifyWithoutSignatureErrors(t *testing.T) {
	m := testManifest()
	_, err := m.Verify([]byte("key"))
	assert.Error(t, err)
}

func TestComponentChecksum_DeterministicForSameBytes(t *testing.T) {
	a := componentChecksum("numeric", []byte("payload"))
	b := componentChecksum("numeric", []byte("payload"))
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.SHA256Hex)
}
