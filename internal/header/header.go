// Package header implements the bit-exact Handshake block header codec:
// the fixed 236-byte wire layout, the subheader/preheader split, and the
// commit-hash/mask binding that lets a pool distribute share pre-images
// without revealing the full subheader.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/hash"
)

const (
	// Size is the full encoded header length: nonce(4) + time(8) +
	// prev_block(32) + name_root(32) + extra_nonce(24) + reserved_root(32)
	// + witness_root(32) + merkle_root(32) + version(4) + bits(4) +
	// mask(32).
	Size = 236

	// SubheaderSize is the encoded length of the trailing subheader.
	SubheaderSize = 128

	// PreheaderSize is the encoded length of the preheader pre-image.
	PreheaderSize = 128

	prevBlockSize    = 32
	nameRootSize     = 32
	extraNonceSize   = 24
	reservedRootSize = 32
	witnessRootSize  = 32
	merkleRootSize   = 32
	maskSize         = 32
)

// Header is the value-typed, fixed-layout Handshake block header: the
// mask is stored and mask_hash is computed on demand.
type Header struct {
	Nonce     uint32
	Time      uint64
	PrevBlock [prevBlockSize]byte
	NameRoot  [nameRootSize]byte

	ExtraNonce   [extraNonceSize]byte
	ReservedRoot [reservedRootSize]byte
	WitnessRoot  [witnessRootSize]byte
	MerkleRoot   [merkleRootSize]byte
	Version      uint32
	Bits         uint32

	Mask [maskSize]byte
}

// Encode serializes h into the canonical 236-byte wire format.
func (h *Header) Encode() []byte {
	buf := make([]byte, Size)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], h.Nonce)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], h.Time)
	off += 8
	off += copy(buf[off:], h.PrevBlock[:])
	off += copy(buf[off:], h.NameRoot[:])
	off += copy(buf[off:], h.ExtraNonce[:])
	off += copy(buf[off:], h.ReservedRoot[:])
	off += copy(buf[off:], h.WitnessRoot[:])
	off += copy(buf[off:], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.Bits)
	off += 4
	off += copy(buf[off:], h.Mask[:])

	return buf
}

// Decode parses a Header out of data, which must be at least Size bytes.
func Decode(data []byte) (*Header, errcode.Code) {
	if len(data) < Size {
		return nil, errcode.EENCODING
	}

	h := &Header{}
	off := 0

	h.Nonce = binary.LittleEndian.Uint32(data[off:])
	off += 4
	h.Time = binary.LittleEndian.Uint64(data[off:])
	off += 8
	off += copy(h.PrevBlock[:], data[off:])
	off += copy(h.NameRoot[:], data[off:])
	off += copy(h.ExtraNonce[:], data[off:])
	off += copy(h.ReservedRoot[:], data[off:])
	off += copy(h.WitnessRoot[:], data[off:])
	off += copy(h.MerkleRoot[:], data[off:])
	h.Version = binary.LittleEndian.Uint32(data[off:])
	off += 4
	h.Bits = binary.LittleEndian.Uint32(data[off:])
	off += 4
	copy(h.Mask[:], data[off:])

	return h, errcode.SUCCESS
}

// SubheaderEncode serializes the 128-byte subheader:
// extra_nonce ‖ reserved_root ‖ witness_root ‖ merkle_root ‖ version ‖ bits.
func (h *Header) SubheaderEncode() []byte {
	buf := make([]byte, SubheaderSize)
	off := 0
	off += copy(buf[off:], h.ExtraNonce[:])
	off += copy(buf[off:], h.ReservedRoot[:])
	off += copy(buf[off:], h.WitnessRoot[:])
	off += copy(buf[off:], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.Bits)
	return buf
}

// SubheaderHash is BLAKE2b-256(SubheaderEncode(h)).
func (h *Header) SubheaderHash() [32]byte {
	sum, _ := hash.Blake2bSum(h.SubheaderEncode(), 32)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// MaskHash is BLAKE2b-256(prev_block ‖ mask). Binding mask_hash (not the
// raw mask) into commit_hash is what lets the pool keep the mask secret
// from the miner while still committing to it.
func (h *Header) MaskHash() [32]byte {
	buf := make([]byte, 0, prevBlockSize+maskSize)
	buf = append(buf, h.PrevBlock[:]...)
	buf = append(buf, h.Mask[:]...)
	sum, _ := hash.Blake2bSum(buf, 32)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// CommitHash is BLAKE2b-256(subheader_hash ‖ mask_hash).
func (h *Header) CommitHash() [32]byte {
	subHash := h.SubheaderHash()
	maskHash := h.MaskHash()
	buf := make([]byte, 0, 64)
	buf = append(buf, subHash[:]...)
	buf = append(buf, maskHash[:]...)
	sum, _ := hash.Blake2bSum(buf, 32)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// Padding returns n bytes where byte i = prev_block[i%32] XOR
// name_root[i%32]. Callers request n in {8, 20, 32}. Padding depends only
// on PrevBlock and NameRoot, so it is invariant under changing Nonce;
// callers mining a job should compute it once and reuse it.
func (h *Header) Padding(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = h.PrevBlock[i%prevBlockSize] ^ h.NameRoot[i%nameRootSize]
	}
	return out
}

// PreEncode serializes the 128-byte preheader pre-image:
// nonce ‖ time ‖ padding(20) ‖ prev_block ‖ name_root ‖ commit_hash.
func (h *Header) PreEncode() []byte {
	buf := make([]byte, PreheaderSize)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], h.Nonce)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], h.Time)
	off += 8
	off += copy(buf[off:], h.Padding(20))
	off += copy(buf[off:], h.PrevBlock[:])
	off += copy(buf[off:], h.NameRoot[:])
	commit := h.CommitHash()
	copy(buf[off:], commit[:])
	return buf
}

// String renders a human-readable dump, useful for CLI `-mode verify`
// output and logging.
func (h *Header) String() string {
	return fmt.Sprintf(
		"header{nonce=%d time=%d prev_block=%x name_root=%x extra_nonce=%x "+
			"reserved_root=%x witness_root=%x merkle_root=%x version=%d bits=%08x mask=%x}",
		h.Nonce, h.Time, h.PrevBlock, h.NameRoot, h.ExtraNonce,
		h.ReservedRoot, h.WitnessRoot, h.MerkleRoot, h.Version, h.Bits, h.Mask,
	)
}

// SetNonce writes n into the header's nonce field; it never touches any
// other field. Search backends do not call it per iteration: they write
// the nonce straight into their cached share buffer instead.
func (h *Header) SetNonce(n uint32) {
	h.Nonce = n
}
