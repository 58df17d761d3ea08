// Package refs tracks the reference tables produced by snapshot
// compilation: per-session maps from a short numeric handle to the
// backing-element descriptor it addressed.
package refs

import (
	"fmt"
	"sync"
)

// Entry maps one snapshot handle to a located element descriptor.
type Entry struct {
	Handle    string `json:"handle"`
	BackendID int    `json:"backend_id"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	DupIndex  int    `json:"dup_index,omitempty"`
}

// Store is the durable backing for reference tables. Every mutation is
// written through; reads only happen on a per-session cache miss.
type Store interface {
	Save(session string, entries []Entry) error
	Load(session string) ([]Entry, error)
	Delete(session string) error
}

// Tracker holds the in-memory reference tables, keyed by session. The
// owning process may be suspended and restarted between a snapshot and the
// action that uses its handles, so tables are persisted through Store and
// reloaded lazily: on a lookup for a session never loaded in this process
// lifetime, exactly one reload is attempted before declaring not-found.
type Tracker struct {
	mu     sync.Mutex
	tables map[string]map[string]Entry
	loaded map[string]bool
	store  Store
}

// NewTracker creates a tracker backed by the given store. A nil store
// keeps everything in memory only.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		tables: make(map[string]map[string]Entry),
		loaded: make(map[string]bool),
		store:  store,
	}
}

// RecordSnapshot replaces the stored table for session with entries.
// Tables are never merged: stale handles from the previous snapshot must
// not resolve against the new page state.
func (t *Tracker) RecordSnapshot(session string, entries []Entry) error {
	table := make(map[string]Entry, len(entries))
	for _, e := range entries {
		table[e.Handle] = e
	}

	t.mu.Lock()
	t.tables[session] = table
	t.loaded[session] = true
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Save(session, entries); err != nil {
			return fmt.Errorf("persist refs for session %s: %w", session, err)
		}
	}
	return nil
}

// Resolve looks up a handle for a session. A miss on a session that has
// never been loaded in this process triggers one reload from the store; a
// genuine miss on a loaded table returns immediately.
func (t *Tracker) Resolve(session, handle string) (Entry, bool) {
	t.mu.Lock()
	table, haveTable := t.tables[session]
	loaded := t.loaded[session]
	t.mu.Unlock()

	if haveTable {
		e, ok := table[handle]
		return e, ok
	}
	if loaded || t.store == nil {
		return Entry{}, false
	}

	entries, err := t.store.Load(session)

	t.mu.Lock()
	t.loaded[session] = true
	if err == nil && entries != nil {
		table = make(map[string]Entry, len(entries))
		for _, e := range entries {
			table[e.Handle] = e
		}
		t.tables[session] = table
	}
	t.mu.Unlock()

	if table == nil {
		return Entry{}, false
	}
	e, ok := table[handle]
	return e, ok
}

// Count returns the number of handles tracked for session.
func (t *Tracker) Count(session string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tables[session])
}

// Forget drops all tracked state for session, including the persisted
// table. Called when the session's page context is destroyed.
func (t *Tracker) Forget(session string) {
	t.mu.Lock()
	delete(t.tables, session)
	delete(t.loaded, session)
	t.mu.Unlock()

	if t.store != nil {
		_ = t.store.Delete(session)
	}
}
