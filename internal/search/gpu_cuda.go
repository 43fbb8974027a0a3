//go:build cuda

package search

/*
#cgo LDFLAGS: -lcudart
#include <cuda_runtime.h>
*/
import "C"

import "github.com/handshake-org/hs-miner-go/internal/errcode"

// GPUBackend is the CUDA build of the GPU backend. It enumerates devices
// through the CUDA runtime and applies the same host-side preparation as
// the OpenCL backend (device buffer layout, clamping rules). No search
// kernel ships with this module, so it never runs a search on the device.
type GPUBackend struct{}

// Name returns the backend identifier advertised via get_backends().
func (GPUBackend) Name() string { return "cuda" }

// ListDevices enumerates CUDA devices visible to this process.
func ListDevices() []DeviceInfo {
	var count C.int
	if C.cudaGetDeviceCount(&count) != C.cudaSuccess || count == 0 {
		return nil
	}

	devices := make([]DeviceInfo, 0, count)
	for i := C.int(0); i < count; i++ {
		var prop C.struct_cudaDeviceProp
		if C.cudaGetDeviceProperties(&prop, i) != C.cudaSuccess {
			continue
		}
		devices = append(devices, DeviceInfo{
			ID:           uint32(i),
			Name:         C.GoString(&prop.name[0]),
			MaxWorkItems: int(prop.maxThreadsPerMultiProcessor) * int(prop.multiProcessorCount),
			MaxGroupSize: int(prop.maxThreadsPerBlock),
		})
	}
	return devices
}

// Run selects a device, clamps the work-item and work-group sizes, and
// builds the device header, then reports ENOSUPPORT: nothing is uploaded
// to the device, no kernel is launched, and no nonce is searched.
func (GPUBackend) Run(job *Job) (Result, errcode.Code) {
	devices := ListDevices()
	if len(devices) == 0 {
		return Result{}, errcode.ENODEVICE
	}

	dev := devices[0]
	for _, d := range devices {
		if d.ID == job.Device {
			dev = d
			break
		}
	}

	threads := ClampWorkItems(job.Threads, dev.MaxWorkItems)
	blocks := ClampGroupSize(job.Blocks, dev.MaxGroupSize)
	threads = RoundThreadsToBlocks(threads, blocks)
	if threads < 1 {
		return Result{}, errcode.EBADPROPS
	}

	deviceHeader := BuildDeviceHeader(job.Header, job.Target)
	_ = deviceHeader // built but not uploaded; no kernel ships with this module

	return Result{}, errcode.ENOSUPPORT
}
