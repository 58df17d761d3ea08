package agent

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// eventBufferSize bounds the console and network buffers; the oldest
// entries are dropped first.
const eventBufferSize = 500

type netRecord struct {
	id    string
	entry protocol.RequestEntry
}

// eventBuffers holds browser events the command protocol can query:
// console messages, network requests, and the most recent dialog.
type eventBuffers struct {
	mu       sync.Mutex
	console  []protocol.ConsoleEntry
	requests []netRecord
	dialog   protocol.DialogInfo
}

func newEventBuffers() *eventBuffers {
	return &eventBuffers{}
}

func (b *eventBuffers) addConsole(e protocol.ConsoleEntry) {
	b.mu.Lock()
	b.console = append(b.console, e)
	if len(b.console) > eventBufferSize {
		b.console = b.console[len(b.console)-eventBufferSize:]
	}
	b.mu.Unlock()
}

func (b *eventBuffers) addRequest(r netRecord) {
	b.mu.Lock()
	b.requests = append(b.requests, r)
	if len(b.requests) > eventBufferSize {
		b.requests = b.requests[len(b.requests)-eventBufferSize:]
	}
	b.mu.Unlock()
}

func (b *eventBuffers) setStatus(requestID string, status int) {
	b.mu.Lock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].id == requestID {
			b.requests[i].entry.Status = status
			break
		}
	}
	b.mu.Unlock()
}

// consoleEntries returns buffered console messages, optionally only
// errors, optionally filtered by substring.
func (b *eventBuffers) consoleEntries(errorsOnly bool, filter string) []protocol.ConsoleEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]protocol.ConsoleEntry, 0, len(b.console))
	for _, e := range b.console {
		if errorsOnly && e.Level != "error" {
			continue
		}
		if filter != "" && !strings.Contains(e.Text, filter) && !strings.Contains(e.URL, filter) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// requestEntries returns buffered network requests filtered by URL substring.
func (b *eventBuffers) requestEntries(filter string) []protocol.RequestEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]protocol.RequestEntry, 0, len(b.requests))
	for _, r := range b.requests {
		if filter != "" && !strings.Contains(r.entry.URL, filter) {
			continue
		}
		out = append(out, r.entry)
	}
	return out
}

func (b *eventBuffers) setDialog(d protocol.DialogInfo) {
	b.mu.Lock()
	b.dialog = d
	b.mu.Unlock()
}

func (b *eventBuffers) dialogInfo() protocol.DialogInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dialog
}

// handleBrowserEvent feeds the buffers from instrumentation events. It
// runs on the channel's read loop, so it only records and returns.
func (a *Agent) handleBrowserEvent(session, method string, params json.RawMessage) {
	switch method {
	case "Runtime.consoleAPICalled":
		var ev struct {
			Type string `json:"type"`
			Args []struct {
				Value       json.RawMessage `json:"value"`
				Description string          `json:"description"`
			} `json:"args"`
		}
		if err := json.Unmarshal(params, &ev); err != nil {
			return
		}
		parts := make([]string, 0, len(ev.Args))
		for _, arg := range ev.Args {
			if arg.Description != "" {
				parts = append(parts, arg.Description)
				continue
			}
			var s string
			if err := json.Unmarshal(arg.Value, &s); err == nil {
				parts = append(parts, s)
			} else if len(arg.Value) > 0 {
				parts = append(parts, string(arg.Value))
			}
		}
		level := ev.Type
		if level == "warning" {
			level = "warn"
		}
		a.events.addConsole(protocol.ConsoleEntry{
			Level: level,
			Text:  strings.Join(parts, " "),
			TS:    time.Now().UnixMilli(),
		})

	case "Runtime.exceptionThrown":
		var ev struct {
			ExceptionDetails struct {
				Text      string `json:"text"`
				URL       string `json:"url"`
				Line      int    `json:"lineNumber"`
				Exception *struct {
					Description string `json:"description"`
				} `json:"exception"`
			} `json:"exceptionDetails"`
		}
		if err := json.Unmarshal(params, &ev); err != nil {
			return
		}
		text := ev.ExceptionDetails.Text
		if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
			text = ev.ExceptionDetails.Exception.Description
		}
		a.events.addConsole(protocol.ConsoleEntry{
			Level: "error",
			Text:  text,
			URL:   ev.ExceptionDetails.URL,
			Line:  ev.ExceptionDetails.Line,
			TS:    time.Now().UnixMilli(),
		})

	case "Network.requestWillBeSent":
		var ev struct {
			RequestID string `json:"requestId"`
			Type      string `json:"type"`
			Request   struct {
				Method string `json:"method"`
				URL    string `json:"url"`
			} `json:"request"`
		}
		if err := json.Unmarshal(params, &ev); err != nil {
			return
		}
		a.events.addRequest(netRecord{id: ev.RequestID, entry: protocol.RequestEntry{
			Method: ev.Request.Method,
			URL:    ev.Request.URL,
			Type:   ev.Type,
			TS:     time.Now().UnixMilli(),
		}})

	case "Network.responseReceived":
		var ev struct {
			RequestID string `json:"requestId"`
			Response  struct {
				Status int `json:"status"`
			} `json:"response"`
		}
		if err := json.Unmarshal(params, &ev); err != nil {
			return
		}
		a.events.setStatus(ev.RequestID, ev.Response.Status)

	case "Page.javascriptDialogOpening":
		var ev struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(params, &ev); err != nil {
			return
		}
		a.events.setDialog(protocol.DialogInfo{Open: true, Type: ev.Type, Message: ev.Message})

	case "Page.javascriptDialogClosed":
		a.events.setDialog(protocol.DialogInfo{Open: false})

	case "Runtime.executionContextsCleared":
		// The page context is gone; its reference table is dead.
		a.refs.Forget(session)

	case "Target.detachedFromTarget":
		a.refs.Forget(session)
		if target, ok := a.sessions.targetBySession(session); ok {
			a.sessions.remove(target)
		}
	}
}
