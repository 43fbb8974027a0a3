// Package hash wraps the two streaming hash primitives the PoW digest is
// built from: keyed BLAKE2b at arbitrary output length, and SHA3-256 with
// NIST padding. Both are backed by golang.org/x/crypto rather than
// hand-rolled implementations.
package hash

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

// MinDigestSize and MaxDigestSize bound the BLAKE2b output length the
// engine accepts. The engine itself only ever asks for 32 or 64 bytes,
// but the constructor enforces the full RFC 7693 range so misuse
// anywhere else in the tree fails loudly.
const (
	MinDigestSize = 1
	MaxDigestSize = blake2b.Size // 64
)

// Hasher is the streaming update/final contract, built on top of the
// standard library's hash.Hash so it composes with io.Writer-based code.
type Hasher interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
	Reset()
	Size() int
}

// NewBlake2b returns an unkeyed BLAKE2b hasher producing outLen bytes.
// outLen must be in [MinDigestSize, MaxDigestSize] or it fails with
// EBADARGS.
func NewBlake2b(outLen int) (Hasher, errcode.Code) {
	return NewKeyedBlake2b(outLen, nil)
}

// NewKeyedBlake2b returns a BLAKE2b hasher keyed with key (nil or empty
// for the unkeyed form). key must be at most blake2b.Size bytes.
func NewKeyedBlake2b(outLen int, key []byte) (Hasher, errcode.Code) {
	if outLen < MinDigestSize || outLen > MaxDigestSize {
		return nil, errcode.EBADARGS
	}
	if len(key) > blake2b.Size {
		return nil, errcode.EBADARGS
	}
	h, err := blake2b.New(outLen, key)
	if err != nil {
		return nil, errcode.EBADARGS
	}
	return h, errcode.SUCCESS
}

// NewSHA3_256 returns a SHA3-256 hasher (1088-bit rate, 0x06 domain
// separator, 32-byte output). Init never fails for this fixed-size
// variant.
func NewSHA3_256() Hasher {
	return sha3.New256()
}

// Blake2bSum computes unkeyed BLAKE2b over data in one shot.
func Blake2bSum(data []byte, outLen int) ([]byte, errcode.Code) {
	h, code := NewBlake2b(outLen)
	if !code.OK() {
		return nil, code
	}
	h.Write(data)
	return h.Sum(nil), errcode.SUCCESS
}

// SHA3Sum256 computes SHA3-256 over data in one shot.
func SHA3Sum256(data []byte) []byte {
	h := NewSHA3_256()
	h.Write(data)
	return h.Sum(nil)
}
