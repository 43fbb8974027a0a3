// Package notify broadcasts job-completion events over WebSocket to any
// connected dashboard or fleet-coordinator client, so an operator doesn't
// need to poll IsRunning/job status. The protocol is a single one-way
// JSON event per completed job; there is no session to authorize or
// authenticate.
package notify

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/handshake-org/hs-miner-go/internal/errcode"
	"github.com/handshake-org/hs-miner-go/internal/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is broadcast to every connected client when a job finishes,
// whether by match, exhaustion, or cancellation.
type Event struct {
	JobID   string `json:"job_id,omitempty"`
	Device  uint32 `json:"device"`
	Backend string `json:"backend"`
	Matched bool   `json:"matched"`
	Nonce   uint32 `json:"nonce,omitempty"`
	Code    string `json:"code"`
	At      int64  `json:"at"`
}

// NewEvent builds an Event from a job's id, backend name, result, and
// error code, stamping the current time.
func NewEvent(jobID string, device uint32, backend string, matched bool, nonce uint32, code errcode.Code) Event {
	return Event{
		JobID:   jobID,
		Device:  device,
		Backend: backend,
		Matched: matched,
		Nonce:   nonce,
		Code:    code.String(),
		At:      time.Now().Unix(),
	}
}

// client wraps one connected WebSocket with its own write mutex, since
// gorilla/websocket connections are not safe for concurrent writers.
type client struct {
	id      uint64
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Server broadcasts Events to every client connected at /ws (or the
// configured path).
type Server struct {
	bind string
	path string

	httpServer *http.Server
	clients    sync.Map // id -> *client
	nextID     uint64
}

// NewServer returns a Server that will listen on bind and accept
// WebSocket upgrades at path.
func NewServer(bind, path string) *Server {
	return &Server{bind: bind, path: path}
}

// Start begins serving WebSocket upgrades in a background goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleConnection)

	s.httpServer = &http.Server{Addr: s.bind, Handler: mux}

	util.Infof("notify: websocket server listening on %s%s", s.bind, s.path)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Errorf("notify: server error: %v", err)
		}
	}()

	return nil
}

// Stop closes every connected client and shuts down the listener.
func (s *Server) Stop() error {
	s.clients.Range(func(_, v interface{}) bool {
		v.(*client).conn.Close()
		return true
	})
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.Warnf("notify: upgrade error: %v", err)
		return
	}

	c := &client{id: atomic.AddUint64(&s.nextID, 1), conn: conn}
	s.clients.Store(c.id, c)
	util.Debugf("notify: client %d connected", c.id)

	go func() {
		defer func() {
			conn.Close()
			s.clients.Delete(c.id)
			util.Debugf("notify: client %d disconnected", c.id)
		}()
		// The connection is write-only from the server's side; keep
		// reading (and discarding) so the client's close frame is
		// observed and the read deadline machinery works.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends event to every currently connected client.
func (s *Server) Broadcast(event Event) {
	s.clients.Range(func(_, v interface{}) bool {
		c := v.(*client)
		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteJSON(event); err != nil {
			util.Debugf("notify: write error for client %d: %v", c.id, err)
		}
		return true
	})
}

// ClientCount reports how many clients are currently connected.
func (s *Server) ClientCount() int {
	count := 0
	s.clients.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
