package dom

import (
	"context"
	"fmt"
	"strings"
)

type keyDef struct {
	key     string
	code    string
	keyCode int
	text    string
}

// namedKeys covers the non-printing keys callers press by name.
var namedKeys = map[string]keyDef{
	"enter":      {"Enter", "Enter", 13, "\r"},
	"tab":        {"Tab", "Tab", 9, ""},
	"escape":     {"Escape", "Escape", 27, ""},
	"backspace":  {"Backspace", "Backspace", 8, ""},
	"delete":     {"Delete", "Delete", 46, ""},
	"space":      {" ", "Space", 32, " "},
	"arrowup":    {"ArrowUp", "ArrowUp", 38, ""},
	"arrowdown":  {"ArrowDown", "ArrowDown", 40, ""},
	"arrowleft":  {"ArrowLeft", "ArrowLeft", 37, ""},
	"arrowright": {"ArrowRight", "ArrowRight", 39, ""},
	"home":       {"Home", "Home", 36, ""},
	"end":        {"End", "End", 35, ""},
	"pageup":     {"PageUp", "PageUp", 33, ""},
	"pagedown":   {"PageDown", "PageDown", 34, ""},
}

var modifierBits = map[string]int{
	"alt":     1,
	"ctrl":    2,
	"control": 2,
	"meta":    4,
	"cmd":     4,
	"shift":   8,
}

// PressKey dispatches one key press to the session. Accepts named keys
// ("Enter", "ArrowDown"), single printable characters, and modifier
// combos joined with "+" ("ctrl+a").
func (a *Actuator) PressKey(ctx context.Context, session, key string) error {
	parts := strings.Split(key, "+")
	modifiers := 0
	for len(parts) > 1 {
		bit, ok := modifierBits[strings.ToLower(parts[0])]
		if !ok {
			break
		}
		modifiers |= bit
		parts = parts[1:]
	}
	base := strings.Join(parts, "+")

	def, named := namedKeys[strings.ToLower(base)]
	if !named {
		runes := []rune(base)
		if len(runes) != 1 {
			return fmt.Errorf("unknown key %q", key)
		}
		def = keyDef{key: base, text: base}
	}

	down := map[string]any{
		"type":      "rawKeyDown",
		"modifiers": modifiers,
		"key":       def.key,
	}
	if def.text != "" {
		down["type"] = "keyDown"
		down["text"] = def.text
	}
	if def.code != "" {
		down["code"] = def.code
	}
	if def.keyCode != 0 {
		down["windowsVirtualKeyCode"] = def.keyCode
		down["nativeVirtualKeyCode"] = def.keyCode
	}
	if _, err := a.ch.Call(ctx, session, "Input.dispatchKeyEvent", down); err != nil {
		return fmt.Errorf("key down %q: %w", key, err)
	}

	up := map[string]any{
		"type":      "keyUp",
		"modifiers": modifiers,
		"key":       def.key,
	}
	if def.code != "" {
		up["code"] = def.code
	}
	if def.keyCode != 0 {
		up["windowsVirtualKeyCode"] = def.keyCode
		up["nativeVirtualKeyCode"] = def.keyCode
	}
	if _, err := a.ch.Call(ctx, session, "Input.dispatchKeyEvent", up); err != nil {
		return fmt.Errorf("key up %q: %w", key, err)
	}
	return nil
}
