package protocol

import "errors"

// Error taxonomy shared by the daemon and the CLI client. Each maps to a
// distinct caller-facing condition; see the HTTP status translation in
// internal/server.
var (
	// ErrNotConnected: no agent is attached to the push channel. Commands
	// are never queued; the caller retries once an agent connects.
	ErrNotConnected = errors.New("extension not connected")

	// ErrTimeout: the command was delivered but no result arrived within
	// the window. The browser-side outcome is unknown.
	ErrTimeout = errors.New("command timed out")

	// ErrNotFound: a reference handle, selector, or option value did not
	// resolve.
	ErrNotFound = errors.New("not found")

	// ErrMalformed: undecodable or invalid payload, rejected before any
	// state mutation.
	ErrMalformed = errors.New("malformed request")

	// ErrTransportClosed: the push channel or response stream closed
	// mid-operation. Equivalent to ErrNotConnected for later commands.
	ErrTransportClosed = errors.New("transport closed")
)
