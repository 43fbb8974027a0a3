// Package powdigest composes the header codec and hash primitives into the
// hybrid BLAKE2b/SHA3 proof-of-work digest, and decodes/encodes the compact
// "bits" target representation it is compared against.
package powdigest

import (
	"math/big"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

// TargetSize is the width of a target in its expanded big-endian form.
const TargetSize = 32

// maxExponent bounds the compact "bits" exponent byte; minExponent is the
// exponent at which the mantissa is used unshifted (smaller exponents
// shift it right rather than being rejected).
const (
	minExponent = 3
	maxExponent = 32

	signBit = 0x00800000 // top bit of the 24-bit mantissa marks a negative encoding
)

// DecodeBits expands a compact 32-bit target encoding (high byte exponent
// e, low 24 bits mantissa m) into a 32-byte big-endian target:
// m << 8*(e-3), zero-extended. Rejects e > 32, m == 0, or a set sign bit.
func DecodeBits(bits uint32) ([TargetSize]byte, errcode.Code) {
	var target [TargetSize]byte

	exponent := bits >> 24
	mantissa := bits & 0x00ffffff

	if mantissa&signBit != 0 {
		return target, errcode.ENEGTARGET
	}
	if mantissa == 0 {
		return target, errcode.ENEGTARGET
	}
	if exponent > maxExponent {
		return target, errcode.ENEGTARGET
	}

	m := new(big.Int).SetUint64(uint64(mantissa))
	if exponent >= minExponent {
		m.Lsh(m, 8*uint(exponent-minExponent))
	} else {
		m.Rsh(m, 8*uint(minExponent-exponent))
	}

	b := m.Bytes()
	if len(b) > TargetSize {
		return target, errcode.ENEGTARGET
	}
	copy(target[TargetSize-len(b):], b)

	return target, errcode.SUCCESS
}

// EncodeBits compresses a 32-byte big-endian target into its compact
// exponent/mantissa form. Inverse of DecodeBits for well-formed targets.
func EncodeBits(target [TargetSize]byte) uint32 {
	t := new(big.Int).SetBytes(target[:])
	if t.Sign() == 0 {
		return 0
	}

	b := t.Bytes()
	size := uint32(len(b))

	var mantissa uint32
	if size <= 3 {
		mantissa = uint32(t.Uint64()) << (8 * (3 - size))
	} else {
		shifted := new(big.Int).Rsh(t, 8*uint(size-3))
		mantissa = uint32(shifted.Uint64())
	}

	// If the high bit of the mantissa would be mistaken for the sign bit,
	// shift down a byte and bump the exponent (matches Bitcoin-style
	// compact encoding, which this target format borrows its shape from).
	if mantissa&signBit != 0 {
		mantissa >>= 8
		size++
	}

	return size<<24 | mantissa
}

// CompareTargets returns -1, 0, or 1 comparing a and b as big-endian
// 256-bit integers (memcmp order).
func CompareTargets(a, b [TargetSize]byte) int {
	for i := 0; i < TargetSize; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
