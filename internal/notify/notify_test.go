package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
)

func TestBroadcastDeliversEventToClient(t *testing.T) {
	srv := NewServer("", "/ws")
	ts := httptest.NewServer(http.HandlerFunc(srv.handleConnection))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && srv.ClientCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	if srv.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", srv.ClientCount())
	}

	want := NewEvent("abc123", 7, "simple", true, 42, errcode.SUCCESS)
	srv.Broadcast(want)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Device != want.Device || got.Nonce != want.Nonce || got.Code != want.Code {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNewEventStampsFields(t *testing.T) {
	e := NewEvent("def456", 3, "cpu", false, 0, errcode.ENOSOLUTION)
	if e.Device != 3 || e.Backend != "cpu" || e.Matched || e.JobID != "def456" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Code != "ENOSOLUTION" {
		t.Errorf("Code = %q, want ENOSOLUTION", e.Code)
	}
	if e.At == 0 {
		t.Error("expected At to be stamped with the current time")
	}
}

func TestClientCountZeroWithNoConnections(t *testing.T) {
	srv := NewServer("", "/ws")
	if srv.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", srv.ClientCount())
	}
}
