// Package api provides the gin-based HTTP dashboard exposed alongside
// the mining engine: a thin surface over hsminer's verify, backend
// enumeration, device listing, job status, and job submission
// operations.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handshake-org/hs-miner-go"
	"github.com/handshake-org/hs-miner-go/internal/config"
	"github.com/handshake-org/hs-miner-go/internal/farm"
	"github.com/handshake-org/hs-miner-go/internal/header"
	"github.com/handshake-org/hs-miner-go/internal/notify"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

// Server is the dashboard's HTTP server.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	server *http.Server

	limiter  *farm.Limiter
	notifier *notify.Server
}

// NewServer builds a Server wired to the process-wide hsminer package
// functions; it holds no mining state of its own.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{cfg: cfg, router: router}
	s.setupRoutes()
	return s
}

// SetLimiter attaches a farm.Limiter that gates POST /api/jobs/mine
// submissions across a fleet of processes. Optional; a nil limiter (the
// default) never throttles submissions.
func (s *Server) SetLimiter(l *farm.Limiter) {
	s.limiter = l
}

// SetNotifier attaches a notify.Server that the dashboard broadcasts
// POST /api/jobs/mine completions through. Optional.
func (s *Server) SetNotifier(n *notify.Server) {
	s.notifier = n
}

// setupRoutes configures the dashboard's endpoints.
func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", corsOrigin(s.cfg.API.CORSOrigins))
		c.Header("Access-Control-Allow-Methods", "GET, POST")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/backends", s.handleBackends)
		api.GET("/devices", s.handleDevices)
		api.GET("/network", s.handleNetwork)
		api.GET("/jobs/:device", s.handleJobStatus)
		api.POST("/jobs/:device/stop", s.handleStopJob)
		api.POST("/jobs/mine", s.handleMine)
		api.POST("/verify", s.handleVerify)
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func corsOrigin(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return origins[0]
}

// Start begins serving the dashboard in a background goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.API.Bind,
		Handler: s.router,
	}

	util.Infof("api: dashboard listening on %s", s.cfg.API.Bind)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("api: server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts down the dashboard server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// handleBackends lists every backend name the process knows, whether or
// not it is currently compiled in with driver support.
func (s *Server) handleBackends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backends": hsminer.GetBackends()})
}

// handleDevices lists the GPU devices visible to the gpu backend.
func (s *Server) handleDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"devices": hsminer.ListDevices()})
}

// handleNetwork returns the process's configured network tag.
func (s *Server) handleNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"network": hsminer.GetNetwork()})
}

// handleJobStatus reports whether a job is currently running on a device.
func (s *Server) handleJobStatus(c *gin.Context) {
	device, ok := parseDevice(c.Param("device"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": device, "running": hsminer.IsRunning(device)})
}

// handleStopJob cancels the job on a device, if any is running.
func (s *Server) handleStopJob(c *gin.Context) {
	device, ok := parseDevice(c.Param("device"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"device": device, "stopped": hsminer.Stop(device)})
}

// mineRequest is the body for POST /api/jobs/mine.
type mineRequest struct {
	Backend    string `json:"backend" binding:"required"`
	HeaderHex  string `json:"header_hex" binding:"required"`
	TargetHex  string `json:"target_hex" binding:"required"`
	NonceStart uint32 `json:"nonce_start"`
	Range      uint32 `json:"range" binding:"required"`
	Threads    int    `json:"threads"`
	Blocks     int    `json:"blocks"`
	Device     uint32 `json:"device"`
}

// handleMine submits a mining job asynchronously and returns immediately;
// the result, if any, is delivered through the notify server (when one is
// attached) rather than this response. When a farm.Limiter is attached,
// a device over its submission budget is rejected with 429 before the
// job ever reaches the registry.
func (s *Server) handleMine(c *gin.Context) {
	var req mineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headerBytes, err := util.HexToBytes(req.HeaderHex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid header_hex"})
		return
	}
	h, code := header.Decode(headerBytes)
	if !code.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"error": code.String()})
		return
	}
	targetBytes, err := util.HexToBytes(req.TargetHex)
	if err != nil || len(targetBytes) != 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_hex must decode to 32 bytes"})
		return
	}
	var target [32]byte
	copy(target[:], targetBytes)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(req.Device)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "submission budget exceeded for device"})
			return
		}
	}

	opts := hsminer.Options{
		Backend: req.Backend,
		Header:  h,
		Nonce:   req.NonceStart,
		Range:   req.Range,
		Target:  target,
		Threads: req.Threads,
		Blocks:  req.Blocks,
		Device:  req.Device,
	}

	submitCode := hsminer.MineAsync(opts, func(outcome hsminer.Outcome) {
		if s.notifier != nil {
			s.notifier.Broadcast(notify.NewEvent(outcome.JobID, outcome.Device, opts.Backend, outcome.Result.Matched, outcome.Result.Nonce, outcome.Code))
		}
	})
	if !submitCode.OK() {
		c.JSON(http.StatusBadRequest, gin.H{"error": submitCode.String()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"submitted": true})
}

// verifyRequest is the body for POST /api/verify.
type verifyRequest struct {
	HeaderHex string `json:"header_hex" binding:"required"`
	TargetHex string `json:"target_hex" binding:"required"`
}

// handleVerify decodes a hex-encoded header and target and reports the
// PoW verification result, for operators checking a share without
// standing up a full miner process.
func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	headerBytes, err := util.HexToBytes(req.HeaderHex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid header_hex"})
		return
	}
	targetBytes, err := util.HexToBytes(req.TargetHex)
	if err != nil || len(targetBytes) != 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_hex must decode to 32 bytes"})
		return
	}

	var target [32]byte
	copy(target[:], targetBytes)

	code := hsminer.Verify(headerBytes, target)
	c.JSON(http.StatusOK, gin.H{
		"code":    int(code),
		"success": code.OK(),
		"at":      time.Now().Unix(),
	})
}

func parseDevice(s string) (uint32, bool) {
	device, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(device), true
}
