package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ox01024/bb-browser/internal/imaging"
	"github.com/ox01024/bb-browser/internal/protocol"
)

// sessionMap tracks which browser targets the agent has attached to and
// which one is current. Keys are target IDs (the tab IDs callers see);
// values are instrumentation session IDs.
type sessionMap struct {
	mu            sync.Mutex
	byTarget      map[string]string
	currentTarget string
}

func newSessionMap() *sessionMap {
	return &sessionMap{byTarget: make(map[string]string)}
}

func (m *sessionMap) get(targetID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byTarget[targetID]
	return s, ok
}

func (m *sessionMap) put(targetID, session string) {
	m.mu.Lock()
	m.byTarget[targetID] = session
	m.mu.Unlock()
}

func (m *sessionMap) current() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTarget, m.byTarget[m.currentTarget]
}

func (m *sessionMap) setCurrent(targetID string) {
	m.mu.Lock()
	m.currentTarget = targetID
	m.mu.Unlock()
}

func (m *sessionMap) remove(targetID string) {
	m.mu.Lock()
	delete(m.byTarget, targetID)
	if m.currentTarget == targetID {
		m.currentTarget = ""
	}
	m.mu.Unlock()
}

// targetBySession returns the target ID owning a session, if attached.
func (m *sessionMap) targetBySession(session string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for t, s := range m.byTarget {
		if s == session {
			return t, true
		}
	}
	return "", false
}

type targetInfo struct {
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

func (a *Agent) listTargets(ctx context.Context) ([]targetInfo, error) {
	raw, err := a.browser.Call(ctx, "", "Target.getTargets", nil)
	if err != nil {
		return nil, err
	}
	var res struct {
		TargetInfos []targetInfo `json:"targetInfos"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	pages := res.TargetInfos[:0]
	for _, t := range res.TargetInfos {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	return pages, nil
}

// attachTarget attaches to a page target and enables the protocol domains
// the agent relies on.
func (a *Agent) attachTarget(ctx context.Context, targetID string) (string, error) {
	if session, ok := a.sessions.get(targetID); ok {
		return session, nil
	}
	raw, err := a.browser.Call(ctx, "", "Target.attachToTarget", map[string]any{
		"targetId": targetID,
		"flatten":  true,
	})
	if err != nil {
		return "", fmt.Errorf("attach to tab %s: %w", targetID, err)
	}
	var res struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("decode attach result: %w", err)
	}
	session := res.SessionID

	for _, method := range []string{"Page.enable", "DOM.enable", "Runtime.enable", "Network.enable", "Accessibility.enable"} {
		if _, err := a.browser.Call(ctx, session, method, nil); err != nil {
			a.log.Warn("domain enable failed", "method", method, "err", err)
		}
	}
	// Prime the DOM agent so backend node resolution works immediately.
	_, _ = a.browser.Call(ctx, session, "DOM.getDocument", map[string]any{"depth": 0})

	a.sessions.put(targetID, session)
	return session, nil
}

// ensureSession resolves the optional target-session selector of a
// request: empty means the current tab (attaching the first page if none
// is current yet), anything else names a tab by ID.
func (a *Agent) ensureSession(ctx context.Context, selector string) (string, error) {
	if selector != "" {
		return a.attachTarget(ctx, selector)
	}
	if _, session := a.sessions.current(); session != "" {
		return session, nil
	}
	pages, err := a.listTargets(ctx)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no open page", protocol.ErrNotFound)
	}
	session, err := a.attachTarget(ctx, pages[0].TargetID)
	if err != nil {
		return "", err
	}
	a.sessions.setCurrent(pages[0].TargetID)
	return session, nil
}

// evaluate runs an expression in the page and returns its JSON value.
func (a *Agent) evaluate(ctx context.Context, session, expr string) (json.RawMessage, error) {
	raw, err := a.browser.Call(ctx, session, "Runtime.evaluate", map[string]any{
		"expression":    expr,
		"returnByValue": true,
	})
	if err != nil {
		return nil, err
	}
	var res struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode evaluate result: %w", err)
	}
	return res.Result.Value, nil
}

func (a *Agent) evaluateString(ctx context.Context, session, expr string) string {
	raw, err := a.evaluate(ctx, session, expr)
	if err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// navigate loads url and invalidates the session's reference table: the
// old handles point into a document that no longer exists.
func (a *Agent) navigate(ctx context.Context, session, url string) (protocol.NavigateData, error) {
	if _, err := a.browser.Call(ctx, session, "Page.navigate", map[string]any{"url": url}); err != nil {
		return protocol.NavigateData{}, err
	}
	a.refs.Forget(session)
	return protocol.NavigateData{URL: url}, nil
}

// historyStep moves back (-1) or forward (+1) in the session's history.
func (a *Agent) historyStep(ctx context.Context, session string, delta int) (protocol.NavigateData, error) {
	raw, err := a.browser.Call(ctx, session, "Page.getNavigationHistory", nil)
	if err != nil {
		return protocol.NavigateData{}, err
	}
	var res struct {
		CurrentIndex int `json:"currentIndex"`
		Entries      []struct {
			ID  int    `json:"id"`
			URL string `json:"url"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return protocol.NavigateData{}, fmt.Errorf("decode history: %w", err)
	}
	idx := res.CurrentIndex + delta
	if idx < 0 || idx >= len(res.Entries) {
		return protocol.NavigateData{}, fmt.Errorf("%w: no history entry in that direction", protocol.ErrNotFound)
	}
	if _, err := a.browser.Call(ctx, session, "Page.navigateToHistoryEntry", map[string]any{
		"entryId": res.Entries[idx].ID,
	}); err != nil {
		return protocol.NavigateData{}, err
	}
	a.refs.Forget(session)
	return protocol.NavigateData{URL: res.Entries[idx].URL}, nil
}

// screenshot captures the viewport and post-processes it per the request.
func (a *Agent) screenshot(ctx context.Context, session string, format string, quality int, scale float64) (protocol.ScreenshotData, error) {
	raw, err := a.browser.Call(ctx, session, "Page.captureScreenshot", map[string]any{"format": "png"})
	if err != nil {
		return protocol.ScreenshotData{}, err
	}
	var res struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return protocol.ScreenshotData{}, fmt.Errorf("decode screenshot: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(res.Data)
	if err != nil {
		return protocol.ScreenshotData{}, fmt.Errorf("decode screenshot data: %w", err)
	}
	processed, outFormat, err := imaging.Process(data, format, quality, scale)
	if err != nil {
		return protocol.ScreenshotData{}, err
	}
	return protocol.ScreenshotData{
		Format: outFormat,
		Base64: base64.StdEncoding.EncodeToString(processed),
	}, nil
}

// listFrames flattens the session's frame tree.
func (a *Agent) listFrames(ctx context.Context, session string) ([]protocol.FrameInfo, error) {
	raw, err := a.browser.Call(ctx, session, "Page.getFrameTree", nil)
	if err != nil {
		return nil, err
	}
	var res struct {
		FrameTree frameTreeNode `json:"frameTree"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode frame tree: %w", err)
	}
	var frames []protocol.FrameInfo
	flattenFrames(res.FrameTree, "", &frames)
	return frames, nil
}

type frameTreeNode struct {
	Frame struct {
		ID   string `json:"id"`
		URL  string `json:"url"`
		Name string `json:"name"`
	} `json:"frame"`
	ChildFrames []frameTreeNode `json:"childFrames"`
}

func flattenFrames(node frameTreeNode, parentID string, out *[]protocol.FrameInfo) {
	*out = append(*out, protocol.FrameInfo{
		ID:       node.Frame.ID,
		URL:      node.Frame.URL,
		Name:     node.Frame.Name,
		ParentID: parentID,
	})
	for _, child := range node.ChildFrames {
		flattenFrames(child, node.Frame.ID, out)
	}
}

// tabInfos lists open tabs, marking the current one.
func (a *Agent) tabInfos(ctx context.Context) ([]protocol.TabInfo, error) {
	pages, err := a.listTargets(ctx)
	if err != nil {
		return nil, err
	}
	currentTarget, _ := a.sessions.current()
	tabs := make([]protocol.TabInfo, 0, len(pages))
	for _, p := range pages {
		tabs = append(tabs, protocol.TabInfo{
			ID:     p.TargetID,
			URL:    p.URL,
			Title:  p.Title,
			Active: p.TargetID == currentTarget,
		})
	}
	return tabs, nil
}

func (a *Agent) newTab(ctx context.Context, url string) (protocol.TabInfo, error) {
	if url == "" {
		url = "about:blank"
	}
	raw, err := a.browser.Call(ctx, "", "Target.createTarget", map[string]any{"url": url})
	if err != nil {
		return protocol.TabInfo{}, err
	}
	var res struct {
		TargetID string `json:"targetId"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return protocol.TabInfo{}, fmt.Errorf("decode new tab: %w", err)
	}
	if _, err := a.attachTarget(ctx, res.TargetID); err != nil {
		return protocol.TabInfo{}, err
	}
	a.sessions.setCurrent(res.TargetID)
	return protocol.TabInfo{ID: res.TargetID, URL: url, Active: true}, nil
}

func (a *Agent) selectTab(ctx context.Context, targetID string) error {
	if _, err := a.attachTarget(ctx, targetID); err != nil {
		return err
	}
	if _, err := a.browser.Call(ctx, "", "Target.activateTarget", map[string]any{"targetId": targetID}); err != nil {
		return err
	}
	a.sessions.setCurrent(targetID)
	return nil
}

func (a *Agent) closeTab(ctx context.Context, targetID string) error {
	if session, ok := a.sessions.get(targetID); ok {
		a.refs.Forget(session)
	}
	if _, err := a.browser.Call(ctx, "", "Target.closeTarget", map[string]any{"targetId": targetID}); err != nil {
		return err
	}
	a.sessions.remove(targetID)
	return nil
}
