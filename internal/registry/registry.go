// Package registry implements the process-wide job table: a single
// mutex-guarded map from device id to the in-flight search.Job running
// on it, supporting at-most-one active job per device and external
// stop/stop-all cancellation.
package registry

import (
	"sync"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/search"
)

// cpuDeviceBit marks a synthetic (non-GPU) device id, so CPU jobs never
// collide with real GPU device numbers, which occupy the low range.
const cpuDeviceBit = uint32(1) << 31

// Registry is a process-wide device -> Job table. Most programs share a
// single *Registry for their lifetime; tests should construct their own
// instance rather than relying on a package-level singleton.
type Registry struct {
	mu      sync.Mutex
	jobs    map[uint32]*search.Job
	counter uint16
}

// New returns an empty, ready-to-use Registry.
func New() *Registry {
	return &Registry{jobs: make(map[uint32]*search.Job)}
}

// NextSyntheticDevice mints a device id for a non-GPU backend: a
// monotonic 16-bit counter OR'd with the high bit, so CPU jobs can never
// collide with a real GPU device number.
func (r *Registry) NextSyntheticDevice() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return cpuDeviceBit | uint32(r.counter)
}

// Insert adds job under device. Fails with EMAXLOAD if a job is already
// registered for that device: at most one active job per device.
func (r *Registry) Insert(device uint32, job *search.Job) errcode.Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[device]; exists {
		return errcode.EMAXLOAD
	}
	r.jobs[device] = job
	return errcode.SUCCESS
}

// Remove drops device's entry, if any. Idempotent.
func (r *Registry) Remove(device uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, device)
}

// Find returns the job registered for device, if any.
func (r *Registry) Find(device uint32) (*search.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[device]
	return job, ok
}

// Stop signals the job on device to stop, returning whether one was
// found. The job's own worker observes the flag between iterations and
// exits with EABORT; Stop itself never blocks on that happening.
func (r *Registry) Stop(device uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[device]
	if !ok {
		return false
	}
	job.Stop()
	return true
}

// StopAll signals every registered job to stop, returning whether any
// existed.
func (r *Registry) StopAll() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.jobs) == 0 {
		return false
	}
	for _, job := range r.jobs {
		job.Stop()
	}
	return true
}

// Len reports how many jobs are currently registered. Mainly useful in
// tests asserting the registry drains to empty after StopAll.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
