package search

import (
	"encoding/binary"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/powdigest"
)

// SimpleBackend is the single-threaded reference scan: no parallelism,
// deterministic iteration order. Callers that need a reproducible choice
// of matching nonce across repeated runs should use this backend.
type SimpleBackend struct{}

// Name returns the backend identifier advertised via get_backends().
func (SimpleBackend) Name() string { return "simple" }

// Run scans job's nonce range in order, stopping at the first match or at
// external cancellation.
func (SimpleBackend) Run(job *Job) (Result, errcode.Code) {
	in := powdigest.PrepareInputs(job.Header)
	share := in.Share

	start := uint64(job.NonceStart)
	end := start + uint64(job.Range)

	for n := start; n < end; n++ {
		if !job.Running() {
			return Result{}, errcode.EABORT
		}

		binary.LittleEndian.PutUint32(share[0:4], uint32(n))
		pow := powdigest.DigestFromShare(in)

		if powdigest.CompareTargets(pow, job.Target) <= 0 {
			job.Stop()
			return Result{Nonce: uint32(n), Matched: true}, errcode.SUCCESS
		}
	}

	return Result{}, errcode.ENOSOLUTION
}
