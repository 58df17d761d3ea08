// Package client is the thin caller side of the relay: it submits one
// command to the daemon and blocks until the result or a relay error
// comes back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// DefaultDaemonURL is where the daemon listens unless overridden.
const DefaultDaemonURL = "http://127.0.0.1:8790"

// Client talks to a running daemon over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the daemon at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultDaemonURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// The daemon enforces the command timeout; the HTTP layer only
		// needs a slightly larger ceiling.
		httpc: &http.Client{Timeout: 45 * time.Second},
	}
}

// Send submits one command and waits for its result. req.ID is assigned
// when empty. Relay failures (no extension, timeout) surface as typed
// errors; command failures surface as the error the browser reported.
func (c *Client) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if req.ID == "" {
		req.ID = protocol.NewRequestID()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/command", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("reach daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return nil, protocol.ErrNotConnected
	case http.StatusRequestTimeout:
		return nil, protocol.ErrTimeout
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("daemon returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var res protocol.Response
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if !res.Success {
		return &res, fmt.Errorf("command failed: %s", res.Error)
	}
	return &res, nil
}

// Status fetches the daemon's liveness summary.
func (c *Client) Status(ctx context.Context) (protocol.StatusData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return protocol.StatusData{}, err
	}
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return protocol.StatusData{}, fmt.Errorf("reach daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return protocol.StatusData{}, fmt.Errorf("daemon returned %s", resp.Status)
	}
	var status protocol.StatusData
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return protocol.StatusData{}, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}
