package search

import (
	"encoding/binary"
	"sync"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/powdigest"
)

// CPUBackend partitions the nonce range into job.Threads contiguous
// sub-ranges, one goroutine per sub-range. Partitioning rather than a
// shared counter avoids per-iteration atomics beyond the `running`
// latch; the only shared write any worker makes is flipping running to
// false, which is a benign race: at most one extra iteration of
// redundant work happens if two workers land a match in the same window.
type CPUBackend struct{}

// Name returns the backend identifier advertised via get_backends().
func (CPUBackend) Name() string { return "cpu" }

// Run fans the scan out across job.Threads goroutines and returns the
// first match found by any of them, EABORT if every worker observed
// external cancellation before finding one, or ENOSOLUTION otherwise (no
// match, and at least one worker exhausted its sub-range).
func (CPUBackend) Run(job *Job) (Result, errcode.Code) {
	threads := job.Threads
	if threads < 1 {
		threads = 1
	}
	if uint32(threads) > job.Range {
		threads = int(job.Range)
	}
	if threads < 1 {
		threads = 1
	}

	base := powdigest.PrepareInputs(job.Header)

	subRange := job.Range / uint32(threads)

	var wg sync.WaitGroup
	matches := make(chan Result, threads)
	codes := make(chan errcode.Code, threads)

	for t := 0; t < threads; t++ {
		start := job.NonceStart + subRange*uint32(t)
		end := start + subRange
		if t == threads-1 {
			// Last worker absorbs any remainder from integer division.
			end = job.NonceStart + job.Range
		}

		wg.Add(1)
		go func(start, end uint32) {
			defer wg.Done()

			share := make([]byte, len(base.Share))
			copy(share, base.Share)
			in := &powdigest.Inputs{
				Pad8:  base.Pad8,
				Pad32: base.Pad32,
				Mask:  base.Mask,
				Share: share,
			}

			for n := uint64(start); n < uint64(end); n++ {
				if !job.Running() {
					codes <- errcode.EABORT
					return
				}

				binary.LittleEndian.PutUint32(share[0:4], uint32(n))
				pow := powdigest.DigestFromShare(in)

				if powdigest.CompareTargets(pow, job.Target) <= 0 {
					job.Stop()
					matches <- Result{Nonce: uint32(n), Matched: true}
					codes <- errcode.SUCCESS
					return
				}
			}

			codes <- errcode.ENOSOLUTION
		}(start, end)
	}

	wg.Wait()
	close(matches)
	close(codes)

	for m := range matches {
		return m, errcode.SUCCESS
	}

	aborted := 0
	for c := range codes {
		if c == errcode.EABORT {
			aborted++
		}
	}
	if aborted == threads {
		return Result{}, errcode.EABORT
	}
	return Result{}, errcode.ENOSOLUTION
}
