package telemetry

import (
	"testing"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

func TestNewAgent(t *testing.T) {
	agent := NewAgent("Test Miner", "test_key")
	if agent == nil {
		t.Fatal("NewAgent returned nil")
	}
	if agent.app != nil {
		t.Error("Agent.app should be nil before Start()")
	}
}

func TestStartNoLicenseKey(t *testing.T) {
	agent := NewAgent("Test Miner", "")
	if err := agent.Start(); err != nil {
		t.Errorf("Start() returned error with empty license key: %v", err)
	}
	if agent.app != nil {
		t.Error("Agent.app should be nil with empty license key")
	}
	if agent.IsEnabled() {
		t.Error("IsEnabled() should be false with no license key")
	}
}

func TestStopNotStarted(t *testing.T) {
	agent := NewAgent("Test Miner", "")
	agent.Stop()
}

func TestWrapSearchPassesThroughWhenDisabled(t *testing.T) {
	agent := NewAgent("Test Miner", "")

	called := false
	matched, nonce, code := agent.WrapSearch("simple", 1, func() (bool, uint32, errcode.Code) {
		called = true
		return true, 42, errcode.SUCCESS
	})

	if !called {
		t.Fatal("WrapSearch did not invoke fn")
	}
	if !matched || nonce != 42 || code != errcode.SUCCESS {
		t.Errorf("WrapSearch returned (%v, %d, %s), want (true, 42, SUCCESS)", matched, nonce, code)
	}
}

func TestRecordHashrateNotStarted(t *testing.T) {
	agent := NewAgent("Test Miner", "")
	agent.RecordHashrate(3, 1500000.5)
}

func TestConcurrentAccess(t *testing.T) {
	agent := NewAgent("Test Miner", "")

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			agent.IsEnabled()
			agent.WrapSearch("cpu", 0, func() (bool, uint32, errcode.Code) {
				return false, 0, errcode.ENOSOLUTION
			})
			agent.RecordHashrate(0, 1.0)
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
