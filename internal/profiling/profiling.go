// Package profiling provides an optional net/http/pprof server for
// profiling the search backends' hot loop, particularly the cpu
// backend's goroutine fan-out, and the job registry's mutex. It
// can arm the block/mutex profilers and exposes a backend-status
// endpoint alongside the stock pprof handlers.
package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/handshake-org/hs-miner-go/internal/config"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

// Server provides pprof profiling endpoints scoped to the mining engine's
// own concurrency: the cpu backend's worker goroutines and the job
// registry's single mutex.
type Server struct {
	cfg    *config.ProfilingConfig
	server *http.Server
}

// NewServer creates a new profiling server
func NewServer(cfg *config.ProfilingConfig) *Server {
	return &Server{
		cfg: cfg,
	}
}

// backendStatus reports goroutine/thread counts relevant to judging
// whether the cpu backend's fan-out width is sane for the host, without
// requiring a full profile capture.
type backendStatus struct {
	Goroutines int `json:"goroutines"`
	CPUs       int `json:"cpus"`
	MaxProcs   int `json:"gomaxprocs"`
}

func backendStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := backendStatus{
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		MaxProcs:   runtime.GOMAXPROCS(0),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Start begins the profiling server. If BlockProfileRate or
// MutexProfileFraction are set, it arms those sampled profiles before
// listening. The cpu backend's workers share only an atomic running flag
// and result channels; the registry's mutex is taken by submission and
// Stop/StopAll calls, not by the workers.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		return nil
	}

	if s.cfg.BlockProfileRate > 0 {
		runtime.SetBlockProfileRate(s.cfg.BlockProfileRate)
	}
	if s.cfg.MutexProfileFraction > 0 {
		runtime.SetMutexProfileFraction(s.cfg.MutexProfileFraction)
	}

	mux := http.NewServeMux()

	// Register pprof handlers
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
	mux.HandleFunc("/debug/pprof/backend", backendStatusHandler)

	s.server = &http.Server{
		Addr:    s.cfg.Bind,
		Handler: mux,
	}

	util.Infof("pprof profiling server listening on %s", s.cfg.Bind)
	util.Info("  Available endpoints:")
	util.Info("    /debug/pprof/          - Index")
	util.Info("    /debug/pprof/goroutine - Goroutine stack traces")
	util.Info("    /debug/pprof/heap      - Heap profile")
	util.Info("    /debug/pprof/profile   - CPU profile (30s)")
	util.Info("    /debug/pprof/trace     - Execution trace")
	util.Info("    /debug/pprof/backend   - goroutine/CPU/GOMAXPROCS snapshot")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("Profiling server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts down the profiling server
func (s *Server) Stop() error {
	if s.server != nil {
		util.Info("Stopping profiling server")
		return s.server.Close()
	}
	return nil
}
