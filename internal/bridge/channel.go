package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// DefaultHeartbeatInterval is how often liveness pings go out on an
// attached connection.
const DefaultHeartbeatInterval = 10 * time.Second

// pushConn is one attached streaming connection. Writes are serialized by
// its own mutex; done is closed exactly once when the connection is torn
// down (replaced, write failure, or remote close).
type pushConn struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (c *pushConn) writeEvent(event, data string) error {
	select {
	case <-c.done:
		return protocol.ErrTransportClosed
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write([]byte(formatEvent(event, data))); err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}

func (c *pushConn) close() {
	c.once.Do(func() { close(c.done) })
}

// formatEvent renders one server-sent event frame. Multi-line payloads
// get one data: line per line, per the SSE framing rules.
func formatEvent(event, data string) string {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteByte('\n')
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// PushChannel owns the single server-to-agent streaming connection.
// Attaching while connected first tears down the previous connection;
// callers never see more than one live channel.
type PushChannel struct {
	mu       sync.Mutex
	conn     *pushConn
	interval time.Duration
	log      *log.Logger
}

// NewPushChannel creates a manager sending heartbeats at interval (the
// default when zero).
func NewPushChannel(interval time.Duration, logger *log.Logger) *PushChannel {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &PushChannel{interval: interval, log: logger}
}

// Attach registers w as the active connection, replacing any previous one,
// and emits the connected event. The returned channel is closed when the
// connection is torn down; the HTTP handler blocks on it (and the request
// context) to keep the stream open.
func (p *PushChannel) Attach(w http.ResponseWriter) (<-chan struct{}, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported: response writer is not a flusher")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	conn := &pushConn{w: w, flusher: flusher, done: make(chan struct{})}

	p.mu.Lock()
	prev := p.conn
	p.conn = conn
	p.mu.Unlock()

	if prev != nil {
		p.log.Info("replacing push connection")
		prev.close()
	}

	if err := conn.writeEvent("connected", `{"ts":`+strconv.FormatInt(time.Now().Unix(), 10)+`}`); err != nil {
		p.detach(conn)
		return nil, err
	}
	go p.heartbeat(conn)

	p.log.Info("extension connected")
	return conn.done, nil
}

// heartbeat sends liveness pings until the connection dies. A ping write
// failure is an implicit disconnect.
func (p *PushChannel) heartbeat(conn *pushConn) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-conn.done:
			return
		case <-ticker.C:
			if err := conn.writeEvent("heartbeat", `{"ts":`+strconv.FormatInt(time.Now().Unix(), 10)+`}`); err != nil {
				p.log.Warn("heartbeat failed, dropping connection", "err", err)
				p.detach(conn)
				return
			}
		}
	}
}

// detach tears conn down, clearing the active slot only if conn still
// holds it (a replacement may already have taken over).
func (p *PushChannel) detach(conn *pushConn) {
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()
	conn.close()
}

// Send delivers a command event on the active connection. It reports
// whether the write succeeded; false means no agent is attached (or the
// write failed, which tears the connection down).
func (p *PushChannel) Send(req *protocol.Request) bool {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return false
	}

	payload, err := json.Marshal(req)
	if err != nil {
		p.log.Error("marshal command", "err", err)
		return false
	}
	if err := conn.writeEvent("command", string(payload)); err != nil {
		p.log.Warn("command write failed, dropping connection", "err", err)
		p.detach(conn)
		return false
	}
	return true
}

// Connected reports whether a connection is attached.
func (p *PushChannel) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

// Disconnect tears down the active connection, if any.
func (p *PushChannel) Disconnect() {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn != nil {
		conn.close()
	}
}

// HandleDisconnect is called by the events handler when the remote side
// closes; it clears the slot if conn's done channel matches.
func (p *PushChannel) HandleDisconnect(done <-chan struct{}) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn != nil && (<-chan struct{})(conn.done) == done {
		p.detach(conn)
	}
}
