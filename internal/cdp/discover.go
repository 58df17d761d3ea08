package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// BrowserWSURL resolves the browser-level websocket endpoint from a
// debugging base URL like http://127.0.0.1:9222. A ws:// URL is returned
// unchanged.
func BrowserWSURL(ctx context.Context, baseURL string) (string, error) {
	if strings.HasPrefix(baseURL, "ws://") || strings.HasPrefix(baseURL, "wss://") {
		return baseURL, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query browser at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("browser debug endpoint returned %s", resp.Status)
	}
	var info struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode version info: %w", err)
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("browser at %s reports no websocket endpoint", baseURL)
	}
	return info.WebSocketDebuggerURL, nil
}
