// Package telemetry wraps the mining engine's search operations in New
// Relic APM transactions: wall-clock duration, match/no-match outcome,
// and error code per search, plus process-wide hashrate gauges.
package telemetry

import (
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

// Agent wraps New Relic APM functionality for the mining engine.
type Agent struct {
	appName    string
	licenseKey string

	mu  sync.RWMutex
	app *newrelic.Application
}

// NewAgent returns an Agent configured for appName/licenseKey. Start must
// be called before it records anything.
func NewAgent(appName, licenseKey string) *Agent {
	return &Agent{appName: appName, licenseKey: licenseKey}
}

// Start connects to New Relic. A missing license key disables telemetry
// without it being an error; mining should never fail to start because
// an optional APM integration isn't configured.
func (a *Agent) Start() error {
	if a.licenseKey == "" {
		util.Warn("telemetry: license key not configured, APM disabled")
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(a.appName),
		newrelic.ConfigLicense(a.licenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return err
	}

	if err := app.WaitForConnection(5 * time.Second); err != nil {
		util.Warnf("telemetry: connection timeout: %v (will retry in background)", err)
	}

	a.mu.Lock()
	a.app = app
	a.mu.Unlock()

	util.Infof("telemetry: APM enabled for app %s", a.appName)
	return nil
}

// Stop flushes and shuts down the New Relic agent.
func (a *Agent) Stop() {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app != nil {
		app.Shutdown(10 * time.Second)
	}
}

// IsEnabled reports whether telemetry is connected.
func (a *Agent) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.app != nil
}

// WrapSearch runs fn as a New Relic transaction named after backend,
// recording its duration and the search outcome as a custom event. fn is
// the search invocation itself (typically hsminer.Mine); WrapSearch
// returns whatever fn returns unchanged.
func (a *Agent) WrapSearch(backend string, device uint32, fn func() (matched bool, nonce uint32, code errcode.Code)) (bool, uint32, errcode.Code) {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app == nil {
		return fn()
	}

	txn := app.StartTransaction("Mine/" + backend)
	defer txn.End()

	start := time.Now()
	matched, nonce, code := fn()
	duration := time.Since(start)

	txn.AddAttribute("device", device)
	txn.AddAttribute("matched", matched)
	txn.AddAttribute("code", code.String())
	txn.AddAttribute("duration_ms", duration.Milliseconds())

	if !code.OK() && code != errcode.ENOSOLUTION && code != errcode.EABORT {
		txn.NoticeError(code)
	}

	app.RecordCustomEvent("MiningSearch", map[string]interface{}{
		"backend":     backend,
		"device":      device,
		"matched":     matched,
		"code":        code.String(),
		"duration_ms": duration.Milliseconds(),
	})

	return matched, nonce, code
}

// RecordHashrate reports an estimated hashes-per-second gauge for device
// to New Relic, for dashboards tracking fleet throughput over time.
func (a *Agent) RecordHashrate(device uint32, hashesPerSecond float64) {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app == nil {
		return
	}
	app.RecordCustomMetric("Custom/Device/Hashrate", hashesPerSecond)
}
