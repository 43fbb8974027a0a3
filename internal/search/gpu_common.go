package search

import (
	"github.com/handshake-org/hs-miner-go/internal/header"
)

// DeviceHeaderSize is the width of the buffer uploaded to a GPU device:
// the first 96 bytes of the encoded header (nonce, time, prev_block,
// name_root, and the first 20 bytes of extra_nonce) concatenated with the
// commit hash, pad32, and the target.
const DeviceHeaderSize = 96 + 32 + 32 + 32

// DeviceInfo describes one enumerated GPU device.
type DeviceInfo struct {
	ID           uint32
	Name         string
	MaxWorkItems int
	MaxGroupSize int
}

// BuildDeviceHeader lays out the 192-byte buffer a GPU kernel dispatch
// uploads: first96(header) ‖ commit_hash ‖ pad32 ‖ target.
func BuildDeviceHeader(h *header.Header, target [32]byte) []byte {
	full := h.Encode()
	commit := h.CommitHash()
	pad32 := h.Padding(32)

	buf := make([]byte, 0, DeviceHeaderSize)
	buf = append(buf, full[:96]...)
	buf = append(buf, commit[:]...)
	buf = append(buf, pad32...)
	buf = append(buf, target[:]...)
	return buf
}

// ClampWorkItems bounds the requested total work-item count to the
// device's maximum: any request outside [1, max] clamps to max.
func ClampWorkItems(threads, maxWorkItems int) int {
	if threads < 1 || threads > maxWorkItems {
		return maxWorkItems
	}
	return threads
}

// ClampGroupSize bounds the requested work-group size to the device's
// maximum.
func ClampGroupSize(blocks, maxGroupSize int) int {
	if blocks < 1 || blocks > maxGroupSize {
		return maxGroupSize
	}
	return blocks
}

// RoundThreadsToBlocks rounds threads down to the nearest multiple of
// blocks, so the kernel's global work size divides evenly into
// work-groups.
func RoundThreadsToBlocks(threads, blocks int) int {
	if blocks <= 0 {
		return threads
	}
	if threads%blocks != 0 {
		threads = threads / blocks * blocks
	}
	return threads
}
