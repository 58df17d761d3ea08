package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ox01024/bb-browser/internal/bridge"
	"github.com/ox01024/bb-browser/internal/protocol"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorResponse(id, msg string) protocol.Response {
	return protocol.Response{ID: id, Success: false, Error: msg}
}

// handleCommand accepts one command, registers it in the pending table,
// delivers it on the push channel, and suspends the caller until the
// matching result, the timeout, or shutdown.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("", protocol.ErrMalformed.Error()+": "+err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(req.ID, err.Error()))
		return
	}

	// Never register a pending entry for a command that cannot be
	// delivered: a disconnected channel fails fast with 503.
	if !s.push.Connected() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(req.ID, protocol.ErrNotConnected.Error()))
		return
	}

	ch, err := s.pending.Add(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(req.ID, err.Error()))
		return
	}

	if !s.push.Send(&req) {
		// Delivery raced a disconnect after registration; resolve the same
		// entry rather than leaking it, then fall through to the wait.
		s.pending.Resolve(req.ID, &protocol.Response{
			ID:      req.ID,
			Success: false,
			Error:   protocol.ErrNotConnected.Error(),
		})
	}

	s.log.Debug("command dispatched", "id", req.ID, "action", req.Action)

	outcome := <-ch
	switch {
	case outcome.Err == nil:
		writeJSON(w, http.StatusOK, outcome.Response)
	case errors.Is(outcome.Err, protocol.ErrTimeout):
		writeJSON(w, http.StatusRequestTimeout, errorResponse(req.ID, protocol.ErrTimeout.Error()))
	case errors.Is(outcome.Err, bridge.ErrCleared):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse(req.ID, outcome.Err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse(req.ID, outcome.Err.Error()))
	}
}

// handleEvents establishes the push channel. The handler blocks for the
// lifetime of the connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	done, err := s.push.Attach(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	select {
	case <-done:
		// Replaced by a newer connection or torn down on write failure.
	case <-r.Context().Done():
		s.push.HandleDisconnect(done)
		s.log.Info("extension disconnected")
	}
}

// handleResult accepts a posted command result. Late or duplicate
// postings are expected under network racing; they are acknowledged as
// unmatched (code 1), never an error.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var res protocol.Response
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.Ack{Code: protocol.AckUnmatched, Message: "malformed result"})
		return
	}

	if s.pending.Resolve(res.ID, &res) {
		writeJSON(w, http.StatusOK, protocol.Ack{Code: protocol.AckMatched, Message: "ok"})
		return
	}
	s.log.Debug("unmatched result", "id", res.ID)
	writeJSON(w, http.StatusOK, protocol.Ack{Code: protocol.AckUnmatched, Message: "no pending request"})
}

// handleStatus reports bridge liveness.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, protocol.StatusData{
		Alive:     true,
		Connected: s.push.Connected(),
		Pending:   s.pending.Len(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
