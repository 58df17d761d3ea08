package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ox01024/bb-browser/internal/protocol"
)

type rpcRequest struct {
	ID        int64  `json:"id"`
	Method    string `json:"method"`
	Params    any    `json:"params,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcMessage struct {
	ID        int64           `json:"id,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *rpcError       `json:"error,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

type rpcResult struct {
	result json.RawMessage
	err    error
}

// Client speaks the instrumentation protocol over a WebSocket: JSON
// messages with an id for call correlation, plus unsolicited events.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan rpcResult
	nextID    atomic.Int64

	handlerMu sync.RWMutex
	onEvent   EventHandler

	closed chan struct{}
	once   sync.Once
	log    *log.Logger
}

// Dial connects to a debugger WebSocket URL and starts the read loop.
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	dialer := websocket.Dialer{}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("instrumentation connect: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c := &Client{
		conn:    conn,
		pending: make(map[int64]chan rpcResult),
		closed:  make(chan struct{}),
		log:     logger,
	}
	go c.readLoop()
	return c, nil
}

// SetEventHandler registers the callback for protocol events. Events
// arriving with no handler set are dropped.
func (c *Client) SetEventHandler(fn EventHandler) {
	c.handlerMu.Lock()
	c.onEvent = fn
	c.handlerMu.Unlock()
}

// Call sends one method invocation and blocks for its result.
func (c *Client) Call(ctx context.Context, session, method string, params any) (json.RawMessage, error) {
	select {
	case <-c.closed:
		return nil, protocol.ErrTransportClosed
	default:
	}

	id := c.nextID.Add(1)
	ch := make(chan rpcResult, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	req := rpcRequest{ID: id, Method: method, Params: params, SessionID: session}
	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.drop(id)
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%s: %w", method, res.err)
		}
		return res.result, nil
	case <-ctx.Done():
		c.drop(id)
		return nil, ctx.Err()
	case <-c.closed:
		return nil, protocol.ErrTransportClosed
	}
}

func (c *Client) drop(id int64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown()
			return
		}
		var msg rpcMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("undecodable instrumentation message", "err", err)
			continue
		}

		if msg.Method != "" {
			c.handlerMu.RLock()
			fn := c.onEvent
			c.handlerMu.RUnlock()
			if fn != nil {
				fn(msg.SessionID, msg.Method, msg.Params)
			}
			continue
		}

		c.pendingMu.Lock()
		ch := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.pendingMu.Unlock()
		if ch == nil {
			continue
		}
		if msg.Error != nil {
			ch <- rpcResult{err: fmt.Errorf("%s (code %d)", msg.Error.Message, msg.Error.Code)}
		} else {
			ch <- rpcResult{result: msg.Result}
		}
	}
}

// shutdown fails every in-flight call and marks the client closed.
func (c *Client) shutdown() {
	c.once.Do(func() { close(c.closed) })
	c.pendingMu.Lock()
	for id, ch := range c.pending {
		ch <- rpcResult{err: protocol.ErrTransportClosed}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
}

// Close tears down the connection; in-flight calls fail with
// ErrTransportClosed.
func (c *Client) Close() error {
	c.shutdown()
	return c.conn.Close()
}
