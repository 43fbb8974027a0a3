package header

import (
	"bytes"
	"testing"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

func sampleHeader() *Header {
	h := &Header{
		Nonce:   123456,
		Time:    1700000000,
		Version: 1,
		Bits:    0x1c00ffff,
	}
	for i := range h.PrevBlock {
		h.PrevBlock[i] = byte(i)
	}
	for i := range h.NameRoot {
		h.NameRoot[i] = byte(255 - i)
	}
	for i := range h.ExtraNonce {
		h.ExtraNonce[i] = byte(i * 3)
	}
	for i := range h.ReservedRoot {
		h.ReservedRoot[i] = byte(i + 1)
	}
	for i := range h.WitnessRoot {
		h.WitnessRoot[i] = byte(i * 2)
	}
	for i := range h.MerkleRoot {
		h.MerkleRoot[i] = byte(i * 5)
	}
	for i := range h.Mask {
		h.Mask[i] = byte(i)
	}
	return h
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := sampleHeader()
	encoded := h.Encode()
	if len(encoded) != Size {
		t.Fatalf("Encode length = %d, want %d", len(encoded), Size)
	}

	decoded, code := Decode(encoded)
	if !code.OK() {
		t.Fatalf("Decode failed: %v", code)
	}
	if *decoded != *h {
		t.Errorf("decode(encode(h)) != h\ngot:  %+v\nwant: %+v", decoded, h)
	}
}

func TestDecodeTooShort(t *testing.T) {
	_, code := Decode(make([]byte, Size-1))
	if code != errcode.EENCODING {
		t.Errorf("Decode short input: got %v, want EENCODING", code)
	}
}

func TestSubheaderAndPreheaderLengths(t *testing.T) {
	h := sampleHeader()
	if len(h.SubheaderEncode()) != SubheaderSize {
		t.Errorf("subheader length = %d, want %d", len(h.SubheaderEncode()), SubheaderSize)
	}
	if len(h.PreEncode()) != PreheaderSize {
		t.Errorf("preheader length = %d, want %d", len(h.PreEncode()), PreheaderSize)
	}
}

func TestPaddingInvariant(t *testing.T) {
	h := sampleHeader()
	pad := h.Padding(32)
	for i := 0; i < 32; i++ {
		want := h.PrevBlock[i%32] ^ h.NameRoot[i%32]
		if pad[i] != want {
			t.Errorf("pad[%d] = %x, want %x", i, pad[i], want)
		}
	}
}

func TestPaddingInvariantUnderNonceChange(t *testing.T) {
	h := sampleHeader()
	before := h.Padding(20)
	h.SetNonce(h.Nonce + 1)
	after := h.Padding(20)
	if !bytes.Equal(before, after) {
		t.Error("padding changed when only nonce changed")
	}
}

func TestCommitHashInvariantUnderNonceChange(t *testing.T) {
	h := sampleHeader()
	before := h.CommitHash()
	h.SetNonce(h.Nonce + 1)
	after := h.CommitHash()
	if before != after {
		t.Error("commit hash changed when only nonce changed")
	}
}

func TestSetNonceOnlyTouchesNonce(t *testing.T) {
	h := sampleHeader()
	other := *h
	h.SetNonce(999)
	other.Nonce = 999
	if *h != other {
		t.Error("SetNonce mutated a field other than Nonce")
	}
}
