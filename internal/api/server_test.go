package api

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/handshake-org/hs-miner-go/internal/config"
	"github.com/handshake-org/hs-miner-go/internal/header"
)

func testServer() *Server {
	cfg := &config.Config{API: config.APIConfig{Bind: "127.0.0.1:0", CORSOrigins: []string{"*"}}}
	return NewServer(cfg)
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /health: status %d, want %d", w.Code, http.StatusOK)
	}
}

func TestBackendsEndpointListsKnownNames(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/backends", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/backends: status %d, want %d", w.Code, http.StatusOK)
	}
	for _, name := range []string{"simple", "cpu", "gpu"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Errorf("response missing backend %q: %s", name, w.Body.String())
		}
	}
}

func TestVerifyEndpointRejectsBadHex(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	body := `{"header_hex": "not-hex", "target_hex": "00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/verify: status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJobStatusEndpointRejectsNonNumericDevice(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-number", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("GET /api/jobs/not-a-number: status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestMineEndpointSubmitsWithoutLimiterOrNotifier(t *testing.T) {
	s := testServer()
	h := &header.Header{Version: 1, Bits: 0x1c00ffff}
	headerHex := hex.EncodeToString(h.Encode())
	targetHex := strings.Repeat("ff", 32)

	w := httptest.NewRecorder()
	body := `{"backend":"simple","header_hex":"` + headerHex + `","target_hex":"` + targetHex + `","range":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/mine", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("POST /api/jobs/mine: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestMineEndpointRejectsUnknownBackend(t *testing.T) {
	s := testServer()
	h := &header.Header{Version: 1, Bits: 0x1c00ffff}
	headerHex := hex.EncodeToString(h.Encode())
	targetHex := strings.Repeat("ff", 32)

	w := httptest.NewRecorder()
	body := `{"backend":"nope","header_hex":"` + headerHex + `","target_hex":"` + targetHex + `","range":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/mine", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("POST /api/jobs/mine: status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJobStatusEndpointReportsNotRunningForUnknownDevice(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/999999", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/jobs/999999: status %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"running":false`) {
		t.Errorf("expected running:false for an unknown device, got %s", w.Body.String())
	}
}
