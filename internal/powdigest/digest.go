package powdigest

import (
	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/hash"
	"github.com/handshake-org/hs-miner-go/internal/header"
)

// Inputs bundles the precomputed, nonce-invariant pieces of a header so
// repeated digest computation across a nonce range doesn't redo the
// padding/commit-hash work on every iteration.
type Inputs struct {
	Pad8  []byte
	Pad32 []byte
	Mask  [32]byte

	// Share is the 128-byte preheader pre-image with the nonce at offset
	// 0..4; callers mutate the first 4 bytes in place per iteration and
	// reuse the rest.
	Share []byte
}

// PrepareInputs precomputes the nonce-invariant fields of h once, to be
// reused across an entire search range.
func PrepareInputs(h *header.Header) *Inputs {
	return &Inputs{
		Pad8:  h.Padding(8),
		Pad32: h.Padding(32),
		Mask:  h.Mask,
		Share: h.PreEncode(),
	}
}

// DigestFromShare computes the 32-byte PoW digest directly from a prepared
// share buffer (with the current nonce already written into its first 4
// bytes) and the precomputed pads/mask. This is the hot-path form search
// backends call once per nonce.
//
//  1. left  = BLAKE2b-512(share)
//  2. right = SHA3-256(share ‖ pad8)
//  3. mix   = BLAKE2b-256(left ‖ pad32 ‖ right)
//  4. pow   = mix XOR mask
func DigestFromShare(in *Inputs) [32]byte {
	left, _ := hash.Blake2bSum(in.Share, 64)

	right := hash.NewSHA3_256()
	right.Write(in.Share)
	right.Write(in.Pad8)
	rightSum := right.Sum(nil)

	mixInput := make([]byte, 0, 64+32+32)
	mixInput = append(mixInput, left...)
	mixInput = append(mixInput, in.Pad32...)
	mixInput = append(mixInput, rightSum...)
	mix, _ := hash.Blake2bSum(mixInput, 32)

	var pow [32]byte
	for i := 0; i < 32; i++ {
		pow[i] = mix[i] ^ in.Mask[i]
	}
	return pow
}

// Digest computes the 32-byte PoW digest for h from scratch (no caching).
// Prefer PrepareInputs+DigestFromShare in a search loop.
func Digest(h *header.Header) [32]byte {
	in := PrepareInputs(h)
	return DigestFromShare(in)
}

// VerifyPow recomputes the PoW digest for h and compares it against h.Bits'
// decoded target.
func VerifyPow(h *header.Header) errcode.Code {
	target, code := DecodeBits(h.Bits)
	if !code.OK() {
		return code
	}

	pow := Digest(h)
	if CompareTargets(pow, target) > 0 {
		return errcode.EHIGHHASH
	}
	return errcode.SUCCESS
}

// VerifyAgainst recomputes the PoW digest for h and compares it against
// an explicit 32-byte target rather than h's own encoded bits. Used by
// the public Verify API, which takes the target as a separate argument.
func VerifyAgainst(h *header.Header, target [32]byte) errcode.Code {
	pow := Digest(h)
	if CompareTargets(pow, target) > 0 {
		return errcode.EHIGHHASH
	}
	return errcode.SUCCESS
}
