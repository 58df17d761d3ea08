// Package agent is the extension counterpart of the daemon: it subscribes
// to the push channel, executes each command against the browser through
// the instrumentation channel, and posts the result back. Commands are
// processed strictly one at a time; the next command is only read after
// the previous result is posted.
package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ox01024/bb-browser/internal/cdp"
	"github.com/ox01024/bb-browser/internal/dom"
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/ox01024/bb-browser/internal/refs"
)

// reconnectDelay is the pause before re-subscribing after the push
// channel drops.
const reconnectDelay = 2 * time.Second

// Agent bridges the daemon's push channel to the browser.
type Agent struct {
	daemonURL string
	browser   *cdp.Client
	act       *dom.Actuator
	refs      *refs.Tracker
	events    *eventBuffers
	sessions  *sessionMap
	httpc     *http.Client
	log       *log.Logger
}

// New creates an agent. daemonURL is the daemon's base URL; browser is a
// connected instrumentation client.
func New(daemonURL string, browser *cdp.Client, tracker *refs.Tracker, logger *log.Logger) *Agent {
	if logger == nil {
		logger = log.Default()
	}
	a := &Agent{
		daemonURL: strings.TrimRight(daemonURL, "/"),
		browser:   browser,
		act:       dom.New(browser, tracker),
		refs:      tracker,
		events:    newEventBuffers(),
		sessions:  newSessionMap(),
		httpc:     &http.Client{},
		log:       logger,
	}
	browser.SetEventHandler(a.handleBrowserEvent)
	return a
}

// Run subscribes to the daemon's push channel and processes commands
// until ctx is cancelled, reconnecting on stream loss.
func (a *Agent) Run(ctx context.Context) error {
	if _, err := a.ensureSession(ctx, ""); err != nil {
		a.log.Warn("no page attached yet", "err", err)
	}
	for {
		if err := a.subscribe(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.log.Warn("push channel lost", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// subscribe holds one streaming connection open and dispatches command
// events as they arrive.
func (a *Agent) subscribe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.daemonURL+"/events", nil)
	if err != nil {
		return err
	}
	resp, err := a.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscribe: daemon returned %s", resp.Status)
	}
	a.log.Info("subscribed to daemon", "url", a.daemonURL)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var event string
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			a.handleEvent(ctx, event, data.String())
			event = ""
			data.Reset()
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return protocol.ErrTransportClosed
}

func (a *Agent) handleEvent(ctx context.Context, event, data string) {
	switch event {
	case "connected":
		a.log.Debug("push channel established")
	case "heartbeat":
		// Liveness only.
	case "command":
		var req protocol.Request
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			a.log.Error("undecodable command", "err", err)
			return
		}
		res := a.dispatch(ctx, &req)
		a.postResult(ctx, res)
	}
}

// postResult delivers one command result to the daemon. An unmatched ack
// means the caller already timed out; that is logged and dropped.
func (a *Agent) postResult(ctx context.Context, res *protocol.Response) {
	body, err := json.Marshal(res)
	if err != nil {
		a.log.Error("marshal result", "id", res.ID, "err", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.daemonURL+"/result", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.httpc.Do(req)
	if err != nil {
		a.log.Warn("post result failed", "id", res.ID, "err", err)
		return
	}
	defer resp.Body.Close()
	var ack protocol.Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.Code == protocol.AckUnmatched {
		a.log.Debug("result arrived late", "id", res.ID)
	}
}

func success(id string, data any) *protocol.Response {
	res := &protocol.Response{ID: id, Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return failure(id, fmt.Errorf("marshal result data: %w", err))
		}
		res.Data = raw
	}
	return res
}

func failure(id string, err error) *protocol.Response {
	return &protocol.Response{ID: id, Success: false, Error: err.Error()}
}
