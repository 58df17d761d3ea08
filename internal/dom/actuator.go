// Package dom resolves snapshot reference handles to live element proxies
// and performs single DOM actions on them through the instrumentation
// channel.
package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ox01024/bb-browser/internal/cdp"
	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/ox01024/bb-browser/internal/refs"
)

// WaitPollInterval is the fixed poll interval for WaitFor. The
// instrumentation protocol has no generic node-appeared event, so waiting
// is a bounded poll rather than a subscription; that is a known
// limitation, not a bug.
const WaitPollInterval = 100 * time.Millisecond

// Actuator performs one DOM action per call: resolve the backing element,
// obtain a live object reference, optionally scroll into view, then run
// the action-specific primitive.
type Actuator struct {
	ch   cdp.Channel
	refs *refs.Tracker
}

// New creates an actuator over the given channel and reference tracker.
func New(ch cdp.Channel, tracker *refs.Tracker) *Actuator {
	return &Actuator{ch: ch, refs: tracker}
}

type resolveNodeResult struct {
	Object struct {
		ObjectID string `json:"objectId"`
	} `json:"object"`
}

type callFunctionResult struct {
	Result struct {
		Value json.RawMessage `json:"value"`
	} `json:"result"`
	ExceptionDetails *struct {
		Text      string `json:"text"`
		Exception *struct {
			Description string `json:"description"`
		} `json:"exception"`
	} `json:"exceptionDetails"`
}

// Resolve maps a handle to its tracked entry and a live object ID.
func (a *Actuator) Resolve(ctx context.Context, session, handle string) (refs.Entry, string, error) {
	entry, ok := a.refs.Resolve(session, handle)
	if !ok {
		return refs.Entry{}, "", fmt.Errorf("%w: handle %q unknown for this page, take a snapshot first", protocol.ErrNotFound, handle)
	}

	raw, err := a.ch.Call(ctx, session, "DOM.resolveNode", map[string]any{
		"backendNodeId": entry.BackendID,
	})
	if err != nil {
		return entry, "", fmt.Errorf("resolve element for handle %q: %w", handle, err)
	}
	var res resolveNodeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return entry, "", fmt.Errorf("decode resolved node: %w", err)
	}
	if res.Object.ObjectID == "" {
		return entry, "", fmt.Errorf("%w: element for handle %q is gone, take a snapshot", protocol.ErrNotFound, handle)
	}
	return entry, res.Object.ObjectID, nil
}

// callOn invokes a function with the element as receiver and returns the
// JSON value it produced.
func (a *Actuator) callOn(ctx context.Context, session, objectID, fn string, args ...any) (json.RawMessage, error) {
	wrapped := make([]map[string]any, len(args))
	for i, arg := range args {
		wrapped[i] = map[string]any{"value": arg}
	}
	raw, err := a.ch.Call(ctx, session, "Runtime.callFunctionOn", map[string]any{
		"functionDeclaration": fn,
		"objectId":            objectID,
		"arguments":           wrapped,
		"returnByValue":       true,
		"awaitPromise":        true,
	})
	if err != nil {
		return nil, err
	}
	var res callFunctionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode call result: %w", err)
	}
	if res.ExceptionDetails != nil {
		msg := res.ExceptionDetails.Text
		if res.ExceptionDetails.Exception != nil && res.ExceptionDetails.Exception.Description != "" {
			msg = res.ExceptionDetails.Exception.Description
		}
		return nil, fmt.Errorf("page script failed: %s", msg)
	}
	return res.Result.Value, nil
}

// scrollIntoView best-effort centers the element before interaction.
func (a *Actuator) scrollIntoView(ctx context.Context, session string, backendID int, objectID string) {
	_, err := a.ch.Call(ctx, session, "DOM.scrollIntoViewIfNeeded", map[string]any{
		"backendNodeId": backendID,
	})
	if err != nil {
		_, _ = a.callOn(ctx, session, objectID, `function() { this.scrollIntoView({block: "center", inline: "center"}); }`)
	}
}

// Click resolves the handle and clicks the element.
func (a *Actuator) Click(ctx context.Context, session, handle string) error {
	entry, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return err
	}
	a.scrollIntoView(ctx, session, entry.BackendID, objectID)
	_, err = a.callOn(ctx, session, objectID, `function() { this.click(); }`)
	return err
}

// Hover dispatches pointer-over events on the element.
func (a *Actuator) Hover(ctx context.Context, session, handle string) error {
	entry, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return err
	}
	a.scrollIntoView(ctx, session, entry.BackendID, objectID)
	_, err = a.callOn(ctx, session, objectID, `function() {
		this.dispatchEvent(new MouseEvent("mouseover", {bubbles: true}));
		this.dispatchEvent(new MouseEvent("mousemove", {bubbles: true}));
	}`)
	return err
}

// Fill clears the element's existing content, then sets text. Plain
// inputs and textareas get a value reset; contenteditable hosts get their
// text content cleared and the new text inserted as an editing command.
func (a *Actuator) Fill(ctx context.Context, session, handle, text string) error {
	entry, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return err
	}
	a.scrollIntoView(ctx, session, entry.BackendID, objectID)
	_, err = a.callOn(ctx, session, objectID, `function(text) {
		this.focus();
		if (this.isContentEditable) {
			this.textContent = "";
			document.execCommand("insertText", false, text);
			return;
		}
		this.value = "";
		this.value = text;
		this.dispatchEvent(new Event("input", {bubbles: true}));
		this.dispatchEvent(new Event("change", {bubbles: true}));
	}`, text)
	return err
}

// Focus focuses the element without further interaction.
func (a *Actuator) Focus(ctx context.Context, session, handle string) error {
	_, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return err
	}
	_, err = a.callOn(ctx, session, objectID, `function() { this.focus(); }`)
	return err
}

// TypeText sends characters one at a time to the focused element. Unlike
// Fill it never clears existing content.
func (a *Actuator) TypeText(ctx context.Context, session, text string) error {
	for _, r := range text {
		if _, err := a.ch.Call(ctx, session, "Input.insertText", map[string]any{
			"text": string(r),
		}); err != nil {
			return fmt.Errorf("type character %q: %w", string(r), err)
		}
	}
	return nil
}

// GetText returns the element's rendered text.
func (a *Actuator) GetText(ctx context.Context, session, handle string) (string, error) {
	_, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return "", err
	}
	raw, err := a.callOn(ctx, session, objectID, `function() {
		return this.innerText !== undefined ? this.innerText : (this.textContent || "");
	}`)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return text, nil
}

// SetChecked moves a checkbox/radio to the target state. Idempotent: the
// change event fires only when the state actually flipped.
func (a *Actuator) SetChecked(ctx context.Context, session, handle string, target bool) (protocol.CheckData, error) {
	entry, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return protocol.CheckData{}, err
	}
	a.scrollIntoView(ctx, session, entry.BackendID, objectID)
	raw, err := a.callOn(ctx, session, objectID, `function(target) {
		var was = !!this.checked;
		if (was !== target) {
			this.checked = target;
			this.dispatchEvent(new Event("change", {bubbles: true}));
		}
		return {checked: target, changed: was !== target};
	}`, target)
	if err != nil {
		return protocol.CheckData{}, err
	}
	var data protocol.CheckData
	if err := json.Unmarshal(raw, &data); err != nil {
		return protocol.CheckData{}, fmt.Errorf("decode check result: %w", err)
	}
	return data, nil
}

type selectOutcome struct {
	OK            bool   `json:"ok"`
	SelectedValue string `json:"selectedValue"`
	Options       []struct {
		Value string `json:"value"`
		Label string `json:"label"`
	} `json:"options"`
}

// SelectOption matches an option by exact value, then exact label, then
// trimmed case-insensitive value/label, in that order. A miss fails with
// the full list of available options so the caller can self-correct.
func (a *Actuator) SelectOption(ctx context.Context, session, handle, value string) (protocol.SelectData, error) {
	entry, objectID, err := a.Resolve(ctx, session, handle)
	if err != nil {
		return protocol.SelectData{}, err
	}
	a.scrollIntoView(ctx, session, entry.BackendID, objectID)
	raw, err := a.callOn(ctx, session, objectID, `function(wanted) {
		var opts = Array.from(this.options || []);
		var label = function(o) { return (o.label || o.textContent || "").trim(); };
		var norm = function(s) { return (s || "").trim().toLowerCase(); };
		var pick = null;
		for (var i = 0; i < opts.length && !pick; i++) if (opts[i].value === wanted) pick = opts[i];
		for (var i = 0; i < opts.length && !pick; i++) if (label(opts[i]) === wanted) pick = opts[i];
		var w = norm(wanted);
		for (var i = 0; i < opts.length && !pick; i++) {
			if (norm(opts[i].value) === w || norm(label(opts[i])) === w) pick = opts[i];
		}
		if (!pick) {
			return {ok: false, options: opts.map(function(o) { return {value: o.value, label: label(o)}; })};
		}
		if (this.value !== pick.value) {
			this.value = pick.value;
			this.dispatchEvent(new Event("change", {bubbles: true}));
		}
		return {ok: true, selectedValue: pick.value};
	}`, value)
	if err != nil {
		return protocol.SelectData{}, err
	}
	var out selectOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return protocol.SelectData{}, fmt.Errorf("decode select result: %w", err)
	}
	if !out.OK {
		available := make([]string, 0, len(out.Options))
		for _, o := range out.Options {
			available = append(available, fmt.Sprintf("%q (value=%q)", o.Label, o.Value))
		}
		return protocol.SelectData{}, fmt.Errorf("%w: no option matching %q; available: %s",
			protocol.ErrNotFound, value, strings.Join(available, ", "))
	}
	return protocol.SelectData{SelectedValue: out.SelectedValue}, nil
}

// WaitFor polls at a fixed interval until the handle resolves to a live
// element or the budget runs out.
func (a *Actuator) WaitFor(ctx context.Context, session, handle string, timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	deadline := start.Add(timeout)
	for {
		if _, _, err := a.Resolve(ctx, session, handle); err == nil {
			return time.Since(start), nil
		}
		if time.Now().After(deadline) {
			return time.Since(start), fmt.Errorf("%w: element for handle %q did not appear within %s",
				protocol.ErrTimeout, handle, timeout)
		}
		select {
		case <-ctx.Done():
			return time.Since(start), ctx.Err()
		case <-time.After(WaitPollInterval):
		}
	}
}
