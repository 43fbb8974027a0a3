// Package hsminer is the public entry point for the Handshake mining
// engine: a cancellable, parallel, multi-backend nonce search over a
// block header template, plus the verifier and hash primitives the
// search is built from. It wires internal/search, internal/registry,
// internal/header, internal/powdigest, and internal/hash into the six
// operations a caller needs: mine, mine_async, is_running, stop,
// stop_all, and verify, mirroring the orchestration shape of
// cmd/hsminer/main.go scaled down to a library boundary instead of a
// standalone daemon.
package hsminer

import (
	"fmt"
	"time"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/hash"
	"github.com/handshake-org/hs-miner-go/internal/header"
	"github.com/handshake-org/hs-miner-go/internal/jobid"
	"github.com/handshake-org/hs-miner-go/internal/powdigest"
	"github.com/handshake-org/hs-miner-go/internal/registry"
	"github.com/handshake-org/hs-miner-go/internal/search"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

// defaultRegistry is the process-wide job table backing the package-level
// Mine/Stop/IsRunning functions. Tests that need isolation construct
// their own *registry.Registry instead of reaching for package state.
var defaultRegistry = registry.New()

// Backends lists the search.Backend implementations dispatch knows about,
// keyed by the name advertised through GetBackends/mine's backend
// argument. The GPU entry's name follows the build: "cuda" with
// `-tags cuda`, "opencl" with `-tags opencl`, and a "gpu" placeholder
// otherwise that reports ENOSUPPORT rather than being absent from the
// list, so callers can distinguish "unknown backend name" from "known
// backend, not compiled in".
var Backends = map[string]search.Backend{
	search.SimpleBackend{}.Name(): search.SimpleBackend{},
	search.CPUBackend{}.Name():    search.CPUBackend{},
	search.GPUBackend{}.Name():    search.GPUBackend{},
}

// Options describes one mining invocation: the header template, the
// nonce range to scan, the target to beat, and backend-specific worker
// parameters. Device is the job registry key; pass 0 for the simple and
// cpu backends to have one minted automatically, or a real GPU device
// index for the gpu backend.
type Options struct {
	Backend string
	Header  *header.Header
	Nonce   uint32
	Range   uint32
	Target  [32]byte
	Threads int
	Blocks  int
	Device  uint32
}

// Outcome is what Mine/MineAsync report: the result of the search plus
// the error code the search or its argument validation produced.
type Outcome struct {
	Result search.Result
	Code   errcode.Code

	// JobID is the logging/telemetry handle minted for this invocation
	// (internal/jobid), useful for correlating an Outcome with the
	// notify package's broadcast Event for the same job.
	JobID  string
	Device uint32
}

// validate checks opts before any job is registered or dispatched.
func validate(opts Options) errcode.Code {
	if opts.Header == nil {
		return errcode.EBADARGS
	}
	if _, ok := Backends[opts.Backend]; !ok {
		return errcode.EBADARGS
	}
	if opts.Range == 0 {
		return errcode.EBADARGS
	}
	return errcode.SUCCESS
}

// Mine submits opts and blocks until the backend finds a match, exhausts
// its range, or is cancelled via Stop/StopAll. It is the synchronous half
// of the public API; MineAsync wraps it for callback-based callers.
func Mine(opts Options) Outcome {
	if code := validate(opts); !code.OK() {
		return Outcome{Code: code}
	}

	backend := Backends[opts.Backend]
	device := opts.Device
	if device == 0 && opts.Backend != (search.GPUBackend{}).Name() {
		device = defaultRegistry.NextSyntheticDevice()
	}

	job := search.NewJob(opts.Header, opts.Nonce, opts.Range, opts.Target, opts.Threads, opts.Blocks, device, opts.Backend)
	job.SetID(jobid.New(device, opts.Nonce, opts.Range, time.Now().UnixNano()).String())

	log := util.WithJob(device, opts.Backend, job.ID)

	if code := defaultRegistry.Insert(device, job); !code.OK() {
		log.Warnf("submit rejected: %s", code)
		return Outcome{Code: code}
	}
	defer defaultRegistry.Remove(device)

	log.Debugf("search started: nonce=%d range=%d", opts.Nonce, opts.Range)
	result, code := backend.Run(job)
	log.Debugf("search finished: matched=%v code=%s", result.Matched, code)
	return Outcome{Result: result, Code: code, JobID: job.ID, Device: device}
}

// MineAsync schedules opts on a new goroutine and returns immediately.
// completion is invoked exactly once, from that goroutine, with the
// final Outcome. Argument validation still happens synchronously, before
// MineAsync returns, so a caller sees EBADARGS immediately rather than
// through the completion channel.
func MineAsync(opts Options, completion func(Outcome)) errcode.Code {
	if code := validate(opts); !code.OK() {
		return code
	}
	go func() {
		completion(Mine(opts))
	}()
	return errcode.SUCCESS
}

// IsRunning reports whether a job is currently registered and active on
// device.
func IsRunning(device uint32) bool {
	job, ok := defaultRegistry.Find(device)
	return ok && job.Running()
}

// Stop signals the job on device to cancel, returning whether one was
// found. The worker observes the flag at its next iteration and returns
// EABORT; Stop does not wait for that to happen.
func Stop(device uint32) bool {
	return defaultRegistry.Stop(device)
}

// StopAll signals every registered job to cancel.
func StopAll() bool {
	return defaultRegistry.StopAll()
}

// Verify decodes headerBytes and checks its PoW digest against target.
func Verify(headerBytes []byte, target [32]byte) errcode.Code {
	h, code := header.Decode(headerBytes)
	if !code.OK() {
		return code
	}
	return powdigest.VerifyAgainst(h, target)
}

// Blake2b computes the unkeyed 32-byte BLAKE2b digest of data.
func Blake2b(data []byte) [32]byte {
	sum, _ := hash.Blake2bSum(data, 32)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// Sha3 computes the 32-byte SHA3-256 digest of data.
func Sha3(data []byte) [32]byte {
	sum := hash.SHA3Sum256(data)
	var out [32]byte
	copy(out[:], sum)
	return out
}

// GetBackends lists the names of every backend dispatch knows, whether or
// not it is currently compiled in with driver support.
func GetBackends() []string {
	names := make([]string, 0, len(Backends))
	for name := range Backends {
		names = append(names, name)
	}
	return names
}

// ListDevices enumerates the GPU devices visible to the gpu backend. It
// returns nil when built without the cuda or opencl tag.
func ListDevices() []search.DeviceInfo {
	return search.ListDevices()
}

// String renders an Outcome as a compact one-line summary for logging.
func (o Outcome) String() string {
	if !o.Code.OK() {
		return fmt.Sprintf("outcome{error=%s}", o.Code)
	}
	if !o.Result.Matched {
		return "outcome{no match}"
	}
	return fmt.Sprintf("outcome{nonce=%d}", o.Result.Nonce)
}
