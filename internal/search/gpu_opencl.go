//go:build opencl

package search

/*
#cgo LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#include <stdlib.h>

#ifdef __APPLE__
#include <OpenCL/cl.h>
#else
#include <CL/cl.h>
#endif
*/
import "C"

import (
	"unsafe"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

// GPUBackend is the OpenCL build of the GPU backend. It enumerates OpenCL
// GPU devices and prepares the host-side dispatch parameters; no search
// kernel ships with this module, so it never runs a search on the device.
// Every internal driver error propagates as an error return; a library
// routine must never abort its caller's process.
type GPUBackend struct{}

// Name returns the backend identifier advertised via get_backends().
func (GPUBackend) Name() string { return "opencl" }

// ListDevices enumerates the OpenCL GPU devices visible to this process.
func ListDevices() []DeviceInfo {
	var platformCount C.cl_uint
	if C.clGetPlatformIDs(0, nil, &platformCount) != C.CL_SUCCESS || platformCount == 0 {
		return nil
	}

	platforms := make([]C.cl_platform_id, platformCount)
	if C.clGetPlatformIDs(platformCount, &platforms[0], nil) != C.CL_SUCCESS {
		return nil
	}

	var devices []DeviceInfo
	var id uint32
	for _, p := range platforms {
		var deviceCount C.cl_uint
		if C.clGetDeviceIDs(p, C.CL_DEVICE_TYPE_GPU, 0, nil, &deviceCount) != C.CL_SUCCESS || deviceCount == 0 {
			continue
		}
		dids := make([]C.cl_device_id, deviceCount)
		if C.clGetDeviceIDs(p, C.CL_DEVICE_TYPE_GPU, deviceCount, &dids[0], nil) != C.CL_SUCCESS {
			continue
		}
		for _, d := range dids {
			var maxWorkGroup C.size_t
			C.clGetDeviceInfo(d, C.CL_DEVICE_MAX_WORK_GROUP_SIZE, C.size_t(unsafe.Sizeof(maxWorkGroup)), unsafe.Pointer(&maxWorkGroup), nil)

			var nameBuf [256]C.char
			C.clGetDeviceInfo(d, C.CL_DEVICE_NAME, 256, unsafe.Pointer(&nameBuf[0]), nil)

			devices = append(devices, DeviceInfo{
				ID:           id,
				Name:         C.GoString(&nameBuf[0]),
				MaxWorkItems: int(maxWorkGroup) * 1024, // conservative total-work-item estimate
				MaxGroupSize: int(maxWorkGroup),
			})
			id++
		}
	}
	return devices
}

// Run selects a device, clamps the work-item/work-group configuration,
// and builds the device header, then reports ENOSUPPORT: no kernel
// source ships with this module, so nothing is uploaded, no kernel is
// launched, and no match is read back. The clamping and buffer-layout
// logic it runs is the same plain Go that the tests exercise.
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

	// No compiled kernel ships with this build; report unsupported rather
	// than silently returning a bogus match.
	return Result{}, errcode.ENOSUPPORT
}
