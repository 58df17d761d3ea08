// Package cdp provides the instrumentation channel the agent drives the
// browser through. The rest of the codebase treats it as an opaque RPC
// boundary: a method and params go in, a raw result comes out or the call
// fails.
package cdp

import (
	"context"
	"encoding/json"
)

// Channel is the opaque instrumentation transport. session scopes the
// call to one attached page target; empty means the browser-level target.
type Channel interface {
	Call(ctx context.Context, session, method string, params any) (json.RawMessage, error)
}

// EventHandler receives protocol events (console messages, dialog
// openings, network lifecycle) pushed by the browser outside any call.
type EventHandler func(session, method string, params json.RawMessage)
