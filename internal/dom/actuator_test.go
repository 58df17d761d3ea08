package dom

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
	"github.com/ox01024/bb-browser/internal/refs"
)

type recordedCall struct {
	session string
	method  string
	params  map[string]any
}

// fakeChannel scripts instrumentation responses per method and records
// every call for assertion.
type fakeChannel struct {
	calls    []recordedCall
	handlers map[string]func(params map[string]any) (json.RawMessage, error)
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]func(map[string]any) (json.RawMessage, error))}
}

func (f *fakeChannel) on(method, result string) {
	f.handlers[method] = func(map[string]any) (json.RawMessage, error) {
		return json.RawMessage(result), nil
	}
}

func (f *fakeChannel) Call(_ context.Context, session, method string, params any) (json.RawMessage, error) {
	var m map[string]any
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		_ = json.Unmarshal(b, &m)
	}
	f.calls = append(f.calls, recordedCall{session: session, method: method, params: m})
	if h, ok := f.handlers[method]; ok {
		return h(m)
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeChannel) callsTo(method string) []recordedCall {
	var out []recordedCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestActuator(ch *fakeChannel) *Actuator {
	tracker := refs.NewTracker(nil)
	tracker.RecordSnapshot("s1", []refs.Entry{
		{Handle: "0", BackendID: 42, Role: "button", Name: "Save"},
		{Handle: "1", BackendID: 43, Role: "textbox", Name: "Email"},
	})
	return New(ch, tracker)
}

func TestResolveUnknownHandle(t *testing.T) {
	a := newTestActuator(newFakeChannel())
	_, _, err := a.Resolve(context.Background(), "s1", "99")
	if !errors.Is(err, protocol.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "take a snapshot") {
		t.Errorf("error %q does not tell the caller to re-snapshot", err)
	}
}

func TestResolveGoneElement(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{}}`)
	a := newTestActuator(ch)

	_, _, err := a.Resolve(context.Background(), "s1", "0")
	if !errors.Is(err, protocol.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for a detached element", err)
	}
}

func TestClick(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{"objectId":"obj-42"}}`)
	ch.on("Runtime.callFunctionOn", `{"result":{"value":null}}`)
	a := newTestActuator(ch)

	if err := a.Click(context.Background(), "s1", "0"); err != nil {
		t.Fatal(err)
	}

	resolves := ch.callsTo("DOM.resolveNode")
	if len(resolves) != 1 || resolves[0].params["backendNodeId"].(float64) != 42 {
		t.Errorf("resolveNode calls = %+v", resolves)
	}
	calls := ch.callsTo("Runtime.callFunctionOn")
	if len(calls) != 1 {
		t.Fatalf("callFunctionOn calls = %d, want 1", len(calls))
	}
	if fn := calls[0].params["functionDeclaration"].(string); !strings.Contains(fn, "this.click()") {
		t.Errorf("click function = %q", fn)
	}
	if calls[0].params["objectId"] != "obj-42" {
		t.Errorf("click targeted object %v", calls[0].params["objectId"])
	}
}

func TestFillPassesTextAndClears(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{"objectId":"obj-43"}}`)
	ch.on("Runtime.callFunctionOn", `{"result":{"value":null}}`)
	a := newTestActuator(ch)

	if err := a.Fill(context.Background(), "s1", "1", "hello"); err != nil {
		t.Fatal(err)
	}

	calls := ch.callsTo("Runtime.callFunctionOn")
	if len(calls) != 1 {
		t.Fatalf("callFunctionOn calls = %d, want 1", len(calls))
	}
	fn := calls[0].params["functionDeclaration"].(string)
	// The old value must be cleared before the new one is set.
	if !strings.Contains(fn, `this.value = ""`) {
		t.Errorf("fill function does not clear first:\n%s", fn)
	}
	args := calls[0].params["arguments"].([]any)
	if len(args) != 1 || args[0].(map[string]any)["value"] != "hello" {
		t.Errorf("fill arguments = %+v", args)
	}
}

func TestTypeTextSendsCharacters(t *testing.T) {
	ch := newFakeChannel()
	a := newTestActuator(ch)

	if err := a.TypeText(context.Background(), "s1", "héy"); err != nil {
		t.Fatal(err)
	}
	inserts := ch.callsTo("Input.insertText")
	if len(inserts) != 3 {
		t.Fatalf("insertText calls = %d, want 3 (one per rune)", len(inserts))
	}
	for i, want := range []string{"h", "é", "y"} {
		if got := inserts[i].params["text"]; got != want {
			t.Errorf("insert %d = %v, want %q", i, got, want)
		}
	}
}

func TestSetCheckedIdempotent(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{"objectId":"obj-42"}}`)
	ch.on("Runtime.callFunctionOn", `{"result":{"value":{"checked":true,"changed":false}}}`)
	a := newTestActuator(ch)

	data, err := a.SetChecked(context.Background(), "s1", "0", true)
	if err != nil {
		t.Fatal(err)
	}
	if !data.Checked || data.Changed {
		t.Errorf("SetChecked on already-checked = %+v, want checked and unchanged", data)
	}
}

func TestSelectOptionSuccess(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{"objectId":"obj-42"}}`)
	ch.on("Runtime.callFunctionOn", `{"result":{"value":{"ok":true,"selectedValue":"blue"}}}`)
	a := newTestActuator(ch)

	data, err := a.SelectOption(context.Background(), "s1", "0", "  Blue  ")
	if err != nil {
		t.Fatal(err)
	}
	if data.SelectedValue != "blue" {
		t.Errorf("SelectedValue = %q, want blue", data.SelectedValue)
	}

	calls := ch.callsTo("Runtime.callFunctionOn")
	args := calls[0].params["arguments"].([]any)
	if args[0].(map[string]any)["value"] != "  Blue  " {
		t.Errorf("wanted value passed as %+v", args)
	}
	// The matching tiers run in the page; the function must carry all three.
	fn := calls[0].params["functionDeclaration"].(string)
	for _, tier := range []string{"opts[i].value === wanted", "label(opts[i]) === wanted", "toLowerCase"} {
		if !strings.Contains(fn, tier) {
			t.Errorf("select function missing matcher %q", tier)
		}
	}
}

func TestSelectOptionMissListsOptions(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{"objectId":"obj-42"}}`)
	ch.on("Runtime.callFunctionOn",
		`{"result":{"value":{"ok":false,"options":[{"value":"red","label":"Red"},{"value":"blue","label":"Blue"}]}}}`)
	a := newTestActuator(ch)

	_, err := a.SelectOption(context.Background(), "s1", "0", "green")
	if !errors.Is(err, protocol.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	for _, want := range []string{"green", `"Red" (value="red")`, `"Blue" (value="blue")`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestWaitForResolvesWithinBudget(t *testing.T) {
	ch := newFakeChannel()
	attempts := 0
	ch.handlers["DOM.resolveNode"] = func(map[string]any) (json.RawMessage, error) {
		attempts++
		if attempts < 3 {
			return json.RawMessage(`{"object":{}}`), nil
		}
		return json.RawMessage(`{"object":{"objectId":"obj-42"}}`), nil
	}
	a := newTestActuator(ch)

	elapsed, err := a.WaitFor(context.Background(), "s1", "0", 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed <= 0 || elapsed >= 2*time.Second {
		t.Errorf("elapsed = %v", elapsed)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWaitForTimesOut(t *testing.T) {
	ch := newFakeChannel()
	ch.on("DOM.resolveNode", `{"object":{}}`)
	a := newTestActuator(ch)

	_, err := a.WaitFor(context.Background(), "s1", "0", 150*time.Millisecond)
	if !errors.Is(err, protocol.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestPressKey(t *testing.T) {
	ch := newFakeChannel()
	a := newTestActuator(ch)

	if err := a.PressKey(context.Background(), "s1", "Enter"); err != nil {
		t.Fatal(err)
	}
	events := ch.callsTo("Input.dispatchKeyEvent")
	if len(events) != 2 {
		t.Fatalf("dispatchKeyEvent calls = %d, want down+up", len(events))
	}
	if events[0].params["type"] != "keyDown" || events[0].params["text"] != "\r" {
		t.Errorf("key down = %+v", events[0].params)
	}
	if events[1].params["type"] != "keyUp" || events[1].params["key"] != "Enter" {
		t.Errorf("key up = %+v", events[1].params)
	}
}

func TestPressKeyCombo(t *testing.T) {
	ch := newFakeChannel()
	a := newTestActuator(ch)

	if err := a.PressKey(context.Background(), "s1", "ctrl+a"); err != nil {
		t.Fatal(err)
	}
	events := ch.callsTo("Input.dispatchKeyEvent")
	if len(events) != 2 {
		t.Fatalf("dispatchKeyEvent calls = %d", len(events))
	}
	if mods := events[0].params["modifiers"].(float64); mods != 2 {
		t.Errorf("modifiers = %v, want 2 (ctrl)", mods)
	}
	if events[0].params["key"] != "a" {
		t.Errorf("key = %v, want a", events[0].params["key"])
	}
}

func TestPressKeyUnknown(t *testing.T) {
	a := newTestActuator(newFakeChannel())
	if err := a.PressKey(context.Background(), "s1", "NotAKey"); err == nil {
		t.Fatal("unknown multi-character key accepted")
	}
}
