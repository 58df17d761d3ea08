package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
		want  string
	}{
		{"single line", "command", `{"id":"1"}`, "event: command\ndata: {\"id\":\"1\"}\n\n"},
		{"multi line", "command", "a\nb", "event: command\ndata: a\ndata: b\n\n"},
		{"empty data", "heartbeat", "", "event: heartbeat\ndata: \n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEvent(tt.event, tt.data); got != tt.want {
				t.Errorf("formatEvent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttachAndSend(t *testing.T) {
	p := NewPushChannel(time.Hour, nil)
	if p.Connected() {
		t.Fatal("Connected before any attach")
	}
	if p.Send(&protocol.Request{ID: "1", Action: protocol.ActionSnapshot}) {
		t.Fatal("Send succeeded with no connection")
	}

	rec := httptest.NewRecorder()
	done, err := p.Attach(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Connected() {
		t.Fatal("not connected after Attach")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	if !p.Send(&protocol.Request{ID: "1", Action: protocol.ActionSnapshot}) {
		t.Fatal("Send failed on live connection")
	}

	p.Disconnect()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed by Disconnect")
	}
	if p.Connected() {
		t.Error("still connected after Disconnect")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: connected\n") {
		t.Errorf("missing connected event:\n%s", body)
	}
	if !strings.Contains(body, "event: command\ndata: {\"id\":\"1\"") {
		t.Errorf("missing command event:\n%s", body)
	}
}

func TestAttachReplacesPreviousConnection(t *testing.T) {
	p := NewPushChannel(time.Hour, nil)

	first := httptest.NewRecorder()
	firstDone, err := p.Attach(first)
	if err != nil {
		t.Fatal(err)
	}

	second := httptest.NewRecorder()
	if _, err := p.Attach(second); err != nil {
		t.Fatal(err)
	}

	// The old connection is torn down, never left dangling.
	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("previous connection not closed on replacement")
	}

	if !p.Send(&protocol.Request{ID: "2", Action: protocol.ActionSnapshot}) {
		t.Fatal("Send failed after replacement")
	}
	if strings.Contains(first.Body.String(), "event: command") {
		t.Error("command leaked to the replaced connection")
	}
	if !strings.Contains(second.Body.String(), "event: command") {
		t.Error("command missing from the active connection")
	}
}

// brokenWriter fails every write, simulating a peer that went away.
type brokenWriter struct {
	header http.Header
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, protocol.ErrTransportClosed }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Flush()                    {}

func TestAttachFailsOnDeadWriter(t *testing.T) {
	p := NewPushChannel(time.Hour, nil)
	if _, err := p.Attach(&brokenWriter{}); err == nil {
		t.Fatal("Attach succeeded on a dead writer")
	}
	if p.Connected() {
		t.Error("dead writer left attached")
	}
}

func TestSendFailureDetaches(t *testing.T) {
	p := NewPushChannel(time.Hour, nil)
	rec := httptest.NewRecorder()
	done, err := p.Attach(rec)
	if err != nil {
		t.Fatal(err)
	}

	// Tear down the connection out from under Send.
	p.HandleDisconnect(done)

	if p.Send(&protocol.Request{ID: "3", Action: protocol.ActionSnapshot}) {
		t.Error("Send succeeded on a detached connection")
	}
	if p.Connected() {
		t.Error("still connected after remote disconnect")
	}
}
