// hsminer - Handshake proof-of-work mining engine
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	hsminer "github.com/handshake-org/hs-miner-go"
	"github.com/handshake-org/hs-miner-go/internal/api"
	"github.com/handshake-org/hs-miner-go/internal/config"
	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/farm"
	"github.com/handshake-org/hs-miner-go/internal/header"
	"github.com/handshake-org/hs-miner-go/internal/notify"
	"github.com/handshake-org/hs-miner-go/internal/profiling"
	"github.com/handshake-org/hs-miner-go/internal/telemetry"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	mode := flag.String("mode", "mine", "Run mode: mine, serve, verify")
	showVersion := flag.Bool("version", false, "Show version and exit")

	headerHex := flag.String("header", "", "Hex-encoded 236-byte header template (mine/verify modes)")
	targetHex := flag.String("target", "", "Hex-encoded 32-byte target (mine/verify modes)")
	nonceStart := flag.Uint("nonce-start", 0, "First nonce to scan (mine mode)")
	rangeSize := flag.Uint("range", 1000000, "Nonce range width to scan (mine mode)")
	device := flag.Uint("device", 0, "Device id to register the job under (mine mode); 0 mints a synthetic id")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hsminer v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := util.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	hsminer.SetNetwork(cfg.Network)

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if !setFlags["range"] {
		*rangeSize = uint(cfg.Mining.RangeSize)
	}
	if !setFlags["device"] {
		*device = uint(cfg.Mining.Device)
	}

	switch *mode {
	case "verify":
		runVerify(*headerHex, *targetHex)
	case "mine":
		runMine(cfg, *headerHex, *targetHex, uint32(*nonceStart), uint32(*rangeSize), uint32(*device))
	case "serve":
		runServe(cfg)
	default:
		util.Fatalf("invalid mode: %s", *mode)
	}
}

func decodeHeaderAndTarget(headerHex, targetHex string) (*header.Header, [32]byte, error) {
	var target [32]byte

	headerBytes, err := util.HexToBytes(headerHex)
	if err != nil {
		return nil, target, fmt.Errorf("invalid -header: %w", err)
	}

	h, code := header.Decode(headerBytes)
	if !code.OK() {
		return nil, target, fmt.Errorf("decode header: %s", code)
	}

	targetBytes, err := util.HexToBytes(targetHex)
	if err != nil || len(targetBytes) != 32 {
		return nil, target, fmt.Errorf("-target must decode to 32 bytes")
	}
	copy(target[:], targetBytes)

	return h, target, nil
}

func runVerify(headerHex, targetHex string) {
	h, target, err := decodeHeaderAndTarget(headerHex, targetHex)
	if err != nil {
		util.Fatalf("verify: %v", err)
	}

	code := hsminer.Verify(h.Encode(), target)
	fmt.Printf("%s\n", code)
	if !code.OK() {
		os.Exit(1)
	}
}

func runMine(cfg *config.Config, headerHex, targetHex string, nonceStart, rangeSize, device uint32) {
	h, target, err := decodeHeaderAndTarget(headerHex, targetHex)
	if err != nil {
		util.Fatalf("mine: %v", err)
	}

	var nrAgent *telemetry.Agent
	if cfg.Telemetry.Enabled {
		nrAgent = telemetry.NewAgent(cfg.Telemetry.AppName, cfg.Telemetry.LicenseKey)
		if err := nrAgent.Start(); err != nil {
			util.Warnf("mine: telemetry start failed: %v", err)
			nrAgent = nil
		}
		defer func() {
			if nrAgent != nil {
				nrAgent.Stop()
			}
		}()
	}

	opts := hsminer.Options{
		Backend: cfg.Mining.Backend,
		Header:  h,
		Nonce:   nonceStart,
		Range:   rangeSize,
		Target:  target,
		Threads: cfg.Mining.Threads,
		Blocks:  cfg.Mining.Blocks,
		Device:  device,
	}

	run := func() (bool, uint32, errcode.Code) {
		outcome := hsminer.Mine(opts)
		return outcome.Result.Matched, outcome.Result.Nonce, outcome.Code
	}

	var matched bool
	var nonce uint32
	var code errcode.Code
	if nrAgent != nil {
		matched, nonce, code = nrAgent.WrapSearch(opts.Backend, device, run)
	} else {
		matched, nonce, code = run()
	}

	if !code.OK() {
		fmt.Printf("%v\n", code)
		os.Exit(1)
	}
	if matched {
		fmt.Printf("matched nonce=%d\n", nonce)
		return
	}
	fmt.Println("no match")
}

func runServe(cfg *config.Config) {
	var apiServer *api.Server
	var notifyServer *notify.Server
	var pprofServer *profiling.Server
	var nrAgent *telemetry.Agent
	var limiter *farm.Limiter

	if cfg.Profiling.Enabled {
		pprofServer = profiling.NewServer(&cfg.Profiling)
		if err := pprofServer.Start(); err != nil {
			util.Errorf("serve: profiling start failed: %v", err)
		}
	}

	if cfg.Telemetry.Enabled {
		nrAgent = telemetry.NewAgent(cfg.Telemetry.AppName, cfg.Telemetry.LicenseKey)
		if err := nrAgent.Start(); err != nil {
			util.Errorf("serve: telemetry start failed: %v", err)
		}
	}

	if cfg.Farm.Enabled {
		var err error
		limiter, err = farm.NewLimiter(cfg.Farm.RedisURL, cfg.Farm.RedisDB, cfg.Farm.KeyPrefix, cfg.Farm.MaxScore, cfg.Farm.CostPerJob, cfg.Farm.ScoreWindow)
		if err != nil {
			util.Errorf("serve: farm limiter start failed: %v", err)
			limiter = nil
		}
	}

	if cfg.Notify.Enabled {
		notifyServer = notify.NewServer(cfg.Notify.Bind, cfg.Notify.Path)
		if err := notifyServer.Start(); err != nil {
			util.Errorf("serve: notify start failed: %v", err)
		}
	}

	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg)
		apiServer.SetLimiter(limiter)
		apiServer.SetNotifier(notifyServer)
		if err := apiServer.Start(); err != nil {
			util.Fatalf("serve: api start failed: %v", err)
		}
	}

	util.Info("hsminer dashboard started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	util.Info("serve: shutting down")

	if apiServer != nil {
		apiServer.Stop()
	}
	if notifyServer != nil {
		notifyServer.Stop()
	}
	if limiter != nil {
		limiter.Close()
	}
	if nrAgent != nil {
		nrAgent.Stop()
	}
	if pprofServer != nil {
		pprofServer.Stop()
	}

	util.Info("serve: stopped")
}
