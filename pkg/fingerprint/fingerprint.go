// Package fingerprint supplements the original file-I/O-pool scope with
// content verification: a streaming digest computed alongside the
// read/write pipeline so a caller can confirm a round trip reproduced
// the original bytes without a separate full-file pass.
//
// Two algorithms are wired in deliberately: opencontainers/go-digest
// for a content-addressable identifier compatible with the rest of the
// registry/artifact ecosystem this tool's teacher codebase lives in,
// and cespare/xxhash for a cheap running checksum suitable for
// per-block verification on the hot path.
package fingerprint

import (
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
)

// Verifier accumulates a digest and a fast checksum over a stream of
// writes, without buffering the stream itself.
type Verifier struct {
	digester digest.Digester
	fast     hash.Hash64
}

// New returns a Verifier ready to accept Write calls.
func New() *Verifier {
	return &Verifier{
		digester: digest.Canonical.Digester(),
		fast:     xxhash.New(),
	}
}

// Write feeds p into both the content digest and the fast checksum. It
// never returns an error: both underlying hashes are pure in-memory
// accumulators.
func (v *Verifier) Write(p []byte) (int, error) {
	v.fast.Write(p) //nolint:errcheck // hash.Hash.Write never fails
	return v.digester.Hash().Write(p)
}

// Digest returns the canonical content digest (sha256) of everything
// written so far.
func (v *Verifier) Digest() digest.Digest {
	return v.digester.Digest()
}

// Checksum returns the running xxhash64 checksum of everything written
// so far, suitable for a cheap equality check between two streams
// without comparing full digests.
func (v *Verifier) Checksum() uint64 {
	return v.fast.Sum64()
}

// TeeVerifier wraps an io.Writer so every byte written through it is
// also fed to a Verifier, letting the engine compute a fingerprint
// inline with the write pool instead of re-reading the output file
// afterward.
func TeeVerifier(w io.Writer, v *Verifier) io.Writer {
	return io.MultiWriter(w, v)
}
