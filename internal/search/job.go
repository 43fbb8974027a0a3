// Package search implements the nonce-range scanning backends: a
// single-threaded reference, a goroutine fan-out CPU backend, and an
// optional GPU dispatch. All three consume a Job and report (nonce,
// matched) or an errcode.Code.
package search

import (
	"sync/atomic"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/header"
)

// Job describes one search invocation: a header template, the nonce range
// to scan, a target, and the worker parameters for whichever backend runs
// it. It is created by the public API's submit path, handed to exactly one
// backend, and discarded on completion or cancellation.
type Job struct {
	Header *header.Header

	NonceStart uint32
	Range      uint32
	Target     [32]byte

	Threads int // CPU backend: goroutine fan-out width
	Blocks  int // GPU backend: work-group size

	Device  uint32
	Backend string

	// ID is an opaque handle for logging/telemetry/notify, set by the
	// caller via SetID. It plays no role in the search itself.
	ID string

	running int32 // 1 = running, 0 = stopped; monotonic true->false latch
}

// SetID attaches a logging/telemetry handle to the job. Called once at
// submission time, before the job reaches a backend.
func (j *Job) SetID(id string) {
	j.ID = id
}

// NewJob constructs a Job in the running state.
func NewJob(h *header.Header, nonceStart, rng uint32, target [32]byte, threads, blocks int, device uint32, backend string) *Job {
	return &Job{
		Header:     h,
		NonceStart: nonceStart,
		Range:      rng,
		Target:     target,
		Threads:    threads,
		Blocks:     blocks,
		Device:     device,
		Backend:    backend,
		running:    1,
	}
}

// Running reports whether the job has not yet been cancelled or completed.
// Reads are unsynchronized beyond the atomic load itself; a stale read
// only delays cancellation by one iteration, which is an acceptable trade
// against per-iteration locking.
func (j *Job) Running() bool {
	return atomic.LoadInt32(&j.running) == 1
}

// Stop flips the running flag to false. Idempotent; safe to call from any
// goroutine, including a worker that just found a match and concurrent
// callers of the job registry's Stop/StopAll.
func (j *Job) Stop() {
	atomic.StoreInt32(&j.running, 0)
}

// Result is what a backend reports on completion.
type Result struct {
	Nonce   uint32
	Matched bool
}

// Backend is the uniform contract every search strategy implements.
type Backend interface {
	Name() string
	Run(job *Job) (Result, errcode.Code)
}
