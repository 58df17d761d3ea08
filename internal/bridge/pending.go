// Package bridge implements the relay between synchronous HTTP callers
// and the single asynchronous push channel to the agent: a pending-request
// table correlating command IDs to suspended callers, and the push-channel
// manager owning the one live streaming connection.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// ErrCleared rejects waiting callers when the owning server shuts down.
var ErrCleared = errors.New("server shutting down")

// Outcome is what a suspended caller eventually receives: a matched
// response, or a timeout/shutdown error. Exactly one is delivered per
// accepted request.
type Outcome struct {
	Response *protocol.Response
	Err      error
}

type pendingEntry struct {
	ch    chan Outcome
	timer *time.Timer
}

// PendingTable correlates outbound command identifiers to suspended
// callers. Each entry moves through exactly one of resolve, timeout, or
// clear; whichever fires first removes the entry before acting, so the
// others see a miss.
type PendingTable struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
	timeout time.Duration
}

// NewPendingTable creates a table with the given per-command timeout.
func NewPendingTable(timeout time.Duration) *PendingTable {
	return &PendingTable{
		entries: make(map[string]*pendingEntry),
		timeout: timeout,
	}
}

// Add registers id and returns the channel the caller blocks on. A
// request identifier may be reused only after its previous entry resolved.
func (t *PendingTable) Add(id string) (<-chan Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[id]; exists {
		return nil, fmt.Errorf("request %s already pending", id)
	}
	e := &pendingEntry{ch: make(chan Outcome, 1)}
	e.timer = time.AfterFunc(t.timeout, func() { t.expire(id) })
	t.entries[id] = e
	return e.ch, nil
}

// take removes and returns the entry for id. Removal is the first step of
// every transition, which is what makes resolve/timeout/clear mutually
// exclusive.
func (t *PendingTable) take(id string) *pendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.entries[id]
	delete(t.entries, id)
	return e
}

// Resolve delivers a result to the waiting caller. It reports whether a
// pending entry matched; false means the posting was late or duplicate and
// was dropped.
func (t *PendingTable) Resolve(id string, res *protocol.Response) bool {
	e := t.take(id)
	if e == nil {
		return false
	}
	e.timer.Stop()
	e.ch <- Outcome{Response: res}
	return true
}

func (t *PendingTable) expire(id string) {
	e := t.take(id)
	if e == nil {
		return
	}
	e.ch <- Outcome{Err: protocol.ErrTimeout}
}

// Clear rejects every pending caller with ErrCleared. Called on shutdown.
func (t *PendingTable) Clear() {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[string]*pendingEntry)
	t.mu.Unlock()

	for _, e := range entries {
		e.timer.Stop()
		e.ch <- Outcome{Err: ErrCleared}
	}
}

// Len returns the number of in-flight requests.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
