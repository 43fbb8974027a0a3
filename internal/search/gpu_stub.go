//go:build !cuda && !opencl

package search

import "github.com/handshake-org/hs-miner-go/internal/errcode"

// GPUBackend is the GPU dispatch backend. Built without the `cuda` or
// `opencl` tags, it advertises no devices and reports ENOSUPPORT; a
// library routine must never abort its caller's process.
type GPUBackend struct{}

// Name returns the backend identifier advertised via get_backends(). It
// is still listed even when unsupported, so callers can distinguish an
// unknown backend name from a known one that isn't compiled in; builds
// with driver support advertise "cuda" or "opencl" instead.
func (GPUBackend) Name() string { return "gpu" }

// Run always reports ENOSUPPORT in a build without a GPU driver tag.
func (GPUBackend) Run(job *Job) (Result, errcode.Code) {
	return Result{}, errcode.ENOSUPPORT
}

// ListDevices returns no devices when built without a GPU driver tag.
func ListDevices() []DeviceInfo {
	return nil
}
