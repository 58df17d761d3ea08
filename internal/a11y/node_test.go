package a11y

import (
	"encoding/json"
	"testing"
)

func TestParseNodes(t *testing.T) {
	raw := json.RawMessage(`[
		{
			"nodeId": "1",
			"ignored": false,
			"role": {"type": "role", "value": "RootWebArea"},
			"name": {"type": "computedString", "value": "Example"},
			"childIds": ["2", "3"],
			"backendDOMNodeId": 101
		},
		{
			"nodeId": "2",
			"ignored": true,
			"backendDOMNodeId": 102
		},
		{
			"nodeId": "3",
			"role": {"type": "role", "value": "checkbox"},
			"name": {"type": "computedString", "value": "Agree"},
			"properties": [
				{"name": "checked", "value": {"type": "tristate", "value": "true"}},
				{"name": "level", "value": {"type": "integer", "value": 2}}
			],
			"backendDOMNodeId": 103
		}
	]`)

	nodes, err := ParseNodes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("parsed %d nodes, want 3", len(nodes))
	}

	root := nodes[0]
	if root.ID != "1" || root.Role != "RootWebArea" || root.Name != "Example" {
		t.Errorf("root = %+v", root)
	}
	if root.BackendID != 101 || len(root.ChildIDs) != 2 {
		t.Errorf("root backend/children = %d/%v", root.BackendID, root.ChildIDs)
	}

	// Missing role/name wrappers decode to empty strings, not panics.
	if !nodes[1].Ignored || nodes[1].Role != "" || nodes[1].Name != "" {
		t.Errorf("ignored node = %+v", nodes[1])
	}

	cb := nodes[2]
	if v, ok := cb.Prop("checked"); !ok || v != "true" {
		t.Errorf("checked prop = %q, %v", v, ok)
	}
	// Non-string wire values are carried through as their literal text.
	if v, ok := cb.Prop("level"); !ok || v != "2" {
		t.Errorf("level prop = %q, %v", v, ok)
	}
	if _, ok := cb.Prop("missing"); ok {
		t.Error("Prop reported a property that does not exist")
	}
}

func TestParseNodesMalformed(t *testing.T) {
	if _, err := ParseNodes(json.RawMessage(`{"not": "a list"}`)); err == nil {
		t.Error("ParseNodes accepted a non-list payload")
	}
}
