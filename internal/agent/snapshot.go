package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ox01024/bb-browser/internal/a11y"
	"github.com/ox01024/bb-browser/internal/protocol"
)

// maxLinkResolutions caps per-snapshot hyperlink target lookups; pages
// with more links than this render the remainder without targets.
const maxLinkResolutions = 100

// snapshot compiles the session's accessibility tree into text, commits
// the new reference table, and returns the rendered page state.
func (a *Agent) snapshot(ctx context.Context, session string, req *protocol.Request) (protocol.SnapshotData, error) {
	mode := a11y.Mode(req.Mode)
	switch mode {
	case "", a11y.ModeFull, a11y.ModeInteractive:
	default:
		return protocol.SnapshotData{}, fmt.Errorf("unknown snapshot mode %q (use full or interactive)", req.Mode)
	}

	raw, err := a.browser.Call(ctx, session, "Accessibility.getFullAXTree", nil)
	if err != nil {
		return protocol.SnapshotData{}, fmt.Errorf("fetch accessibility tree: %w", err)
	}
	var treeRes struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &treeRes); err != nil {
		return protocol.SnapshotData{}, fmt.Errorf("decode accessibility tree: %w", err)
	}
	nodes, err := a11y.ParseNodes(treeRes.Nodes)
	if err != nil {
		return protocol.SnapshotData{}, err
	}

	if req.Selector != "" {
		nodes, err = a.scopeToSelector(ctx, session, nodes, req.Selector)
		if err != nil {
			return protocol.SnapshotData{}, err
		}
	}

	var linkTargets map[int]string
	if mode != a11y.ModeInteractive {
		linkTargets = a.resolveLinkTargets(ctx, session, nodes)
	}

	result := a11y.Compile(nodes, linkTargets, a11y.Options{
		Mode:     mode,
		MaxDepth: req.MaxDepth,
		Compact:  req.Compact,
	})
	a.refs.RecordSnapshot(session, result.Refs)

	return protocol.SnapshotData{
		URL:      a.evaluateString(ctx, session, "location.href"),
		Title:    a.evaluateString(ctx, session, "document.title"),
		Snapshot: result.Text,
		Refs:     len(result.Refs),
	}, nil
}

// scopeToSelector reorders the node list so the accessibility node backing
// the first CSS match comes first; the compiler then only emits that
// subtree.
func (a *Agent) scopeToSelector(ctx context.Context, session string, nodes []a11y.Node, selector string) ([]a11y.Node, error) {
	docRaw, err := a.browser.Call(ctx, session, "DOM.getDocument", map[string]any{"depth": 0})
	if err != nil {
		return nil, fmt.Errorf("fetch document root: %w", err)
	}
	var doc struct {
		Root struct {
			NodeID int `json:"nodeId"`
		} `json:"root"`
	}
	if err := json.Unmarshal(docRaw, &doc); err != nil {
		return nil, fmt.Errorf("decode document root: %w", err)
	}

	qRaw, err := a.browser.Call(ctx, session, "DOM.querySelector", map[string]any{
		"nodeId":   doc.Root.NodeID,
		"selector": selector,
	})
	if err != nil {
		return nil, fmt.Errorf("query selector %q: %w", selector, err)
	}
	var q struct {
		NodeID int `json:"nodeId"`
	}
	if err := json.Unmarshal(qRaw, &q); err != nil {
		return nil, fmt.Errorf("decode selector match: %w", err)
	}
	if q.NodeID == 0 {
		return nil, fmt.Errorf("%w: selector %q matched nothing", protocol.ErrNotFound, selector)
	}

	dRaw, err := a.browser.Call(ctx, session, "DOM.describeNode", map[string]any{"nodeId": q.NodeID})
	if err != nil {
		return nil, fmt.Errorf("describe selector match: %w", err)
	}
	var d struct {
		Node struct {
			BackendNodeID int `json:"backendNodeId"`
		} `json:"node"`
	}
	if err := json.Unmarshal(dRaw, &d); err != nil {
		return nil, fmt.Errorf("decode node description: %w", err)
	}

	for i, n := range nodes {
		if n.BackendID != 0 && n.BackendID == d.Node.BackendNodeID {
			reordered := make([]a11y.Node, 0, len(nodes))
			reordered = append(reordered, nodes[i])
			reordered = append(reordered, nodes[:i]...)
			reordered = append(reordered, nodes[i+1:]...)
			return reordered, nil
		}
	}
	return nil, fmt.Errorf("%w: selector %q matched an element with no accessibility node", protocol.ErrNotFound, selector)
}

// resolveLinkTargets maps link nodes to their href values so full-mode
// snapshots can render targets inline. Best effort: failures just leave
// the link without a target.
func (a *Agent) resolveLinkTargets(ctx context.Context, session string, nodes []a11y.Node) map[int]string {
	targets := make(map[int]string)
	resolved := 0
	for _, n := range nodes {
		if n.Role != "link" || n.BackendID == 0 || n.Ignored {
			continue
		}
		if resolved >= maxLinkResolutions {
			break
		}
		resolved++
		href, err := a.linkTarget(ctx, session, n.BackendID)
		if err != nil || href == "" {
			continue
		}
		targets[n.BackendID] = href
	}
	return targets
}

func (a *Agent) linkTarget(ctx context.Context, session string, backendID int) (string, error) {
	raw, err := a.browser.Call(ctx, session, "DOM.resolveNode", map[string]any{
		"backendNodeId": backendID,
	})
	if err != nil {
		return "", err
	}
	var res struct {
		Object struct {
			ObjectID string `json:"objectId"`
		} `json:"object"`
	}
	if err := json.Unmarshal(raw, &res); err != nil || res.Object.ObjectID == "" {
		return "", fmt.Errorf("no object for node %d", backendID)
	}
	callRaw, err := a.browser.Call(ctx, session, "Runtime.callFunctionOn", map[string]any{
		"functionDeclaration": `function() { return this.href || this.getAttribute("href") || ""; }`,
		"objectId":            res.Object.ObjectID,
		"returnByValue":       true,
	})
	if err != nil {
		return "", err
	}
	var call struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(callRaw, &call); err != nil {
		return "", err
	}
	return call.Result.Value, nil
}
