// Package jobid derives a short, collision-resistant handle for a search
// invocation, used only by logging, telemetry, and the notify package's
// job_id field, never by the PoW digest itself, which stays
// BLAKE2b/SHA3 only. Blake3 here is an identifier, not a protocol
// commitment.
package jobid

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ID is a hex-encoded Blake3 digest identifying one search invocation.
type ID string

// New derives an ID from the fields that make a search invocation unique:
// the device it runs on, the nonce range it scans, and when it was
// submitted. Two jobs on the same device submitted at different times
// never collide; two jobs submitted in the same instant on different
// devices don't either.
func New(device uint32, nonceStart, rng uint32, submittedAtUnixNano int64) ID {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], device)
	binary.LittleEndian.PutUint32(buf[4:8], nonceStart)
	binary.LittleEndian.PutUint32(buf[8:12], rng)
	binary.LittleEndian.PutUint64(buf[12:20], uint64(submittedAtUnixNano))

	hasher := blake3.New()
	hasher.Write(buf)
	sum := hasher.Sum(nil)

	return ID(hex.EncodeToString(sum[:8]))
}

// String implements fmt.Stringer so an ID prints bare in log lines.
func (id ID) String() string {
	return string(id)
}
