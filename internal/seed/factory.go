// Package seed derives reproducible random streams and identifiers from a
// single root seed, the way the engine's original forensics ancestor derived
// deterministic scoring jitter from crypto/rand instead of wall-clock
// entropy (see internal/api/routes.go's cryptoRandFloat64 in the teacher
// repo this module was grown from).
package seed

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20"
)

// StreamTag partitions the derivation space so that two subsystems never
// collide on the same (root, counter) pair. Adding a tag is backward
// compatible; reordering or removing one is not — every downstream stream
// reproduces differently once the tag's ordinal changes.
type StreamTag int

const (
	TagMasterData StreamTag = iota
	TagTransaction
	TagAnomaly
	TagBanking
	TagApproval
	TagDocFlow
	TagIntercompany
	TagFingerprint
	TagCoA
)

// Factory wraps the run's root seed and mints independent, reproducible
// Streams from it.
type Factory struct {
	root uint64
}

func NewFactory(rootSeed uint64) *Factory {
	return &Factory{root: rootSeed}
}

func (f *Factory) RootSeed() uint64 { return f.root }

// Stream derives a counter-addressed stream. The same (tag, counter) pair
// against the same root always yields byte-identical output, regardless of
// platform, goroutine scheduling or map iteration order.
func (f *Factory) Stream(tag StreamTag, counter uint64) *Stream {
	h := sha256.New()
	var hdr [24]byte
	binary.BigEndian.PutUint64(hdr[0:8], f.root)
	binary.BigEndian.PutUint64(hdr[8:16], uint64(tag))
	binary.BigEndian.PutUint64(hdr[16:24], counter)
	h.Write(hdr[:])
	digest := h.Sum(nil) // 32 bytes: used directly as the ChaCha20 key

	id, err := uuid.FromBytes(digest[:16])
	if err != nil {
		// uuid.FromBytes only fails on wrong slice length; digest is fixed
		// at 32 bytes so the first 16 are always valid.
		panic(err)
	}
	// RFC 4122 version/variant bits so downstream consumers that validate
	// UUID shape (e.g. Postgres uuid columns) accept it.
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80

	var nonce [12]byte
	binary.BigEndian.PutUint64(nonce[4:12], counter)
	cipher, err := chacha20.NewUnauthenticatedCipher(digest, nonce[:])
	if err != nil {
		panic(err)
	}

	return &Stream{id: id, rng: newStreamRand(cipher)}
}

// Stream is one reproducible derivation: a stable identifier plus an
// independent deterministic RNG.
type Stream struct {
	id  uuid.UUID
	rng *StreamRand
}

func (s *Stream) ID() uuid.UUID  { return s.id }
func (s *Stream) Rand() *StreamRand { return s.rng }
