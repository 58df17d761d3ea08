// Package a11y compiles raw accessibility trees into the text snapshot
// format served to automation callers, assigning reference handles to the
// elements a follow-up action can address. It performs no I/O.
package a11y

import (
	"encoding/json"
	"fmt"
)

// Node is one raw accessibility node as delivered by the instrumentation
// source. IDs are tree-local: they are only meaningful within one snapshot.
type Node struct {
	ID         string     `json:"id"`
	Ignored    bool       `json:"ignored,omitempty"`
	Role       string     `json:"role,omitempty"`
	Name       string     `json:"name,omitempty"`
	Value      string     `json:"value,omitempty"`
	Properties []Property `json:"properties,omitempty"`
	ChildIDs   []string   `json:"child_ids,omitempty"`
	// BackendID is the stable handle into the browser's element store,
	// 0 when the node has no backing DOM element.
	BackendID int    `json:"backend_id,omitempty"`
	FrameID   string `json:"frame_id,omitempty"`
}

// Property is one name/value pair attached to a node (checked, disabled,
// expanded, level, ...).
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Prop returns the value of the named property and whether it was present.
func (n *Node) Prop(name string) (string, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// axValue is the {type, value} wrapper the wire protocol puts around role,
// name, value, and property values.
type axValue struct {
	Value json.RawMessage `json:"value"`
}

func (v *axValue) String() string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err == nil {
		return s
	}
	// Numeric and boolean values are rendered as-is.
	return string(v.Value)
}

type wireProperty struct {
	Name  string   `json:"name"`
	Value *axValue `json:"value"`
}

type wireNode struct {
	NodeID           string          `json:"nodeId"`
	Ignored          bool            `json:"ignored"`
	Role             *axValue        `json:"role"`
	Name             *axValue        `json:"name"`
	Value            *axValue        `json:"value"`
	Properties       []wireProperty  `json:"properties"`
	ChildIDs         []string        `json:"childIds"`
	BackendDOMNodeID int             `json:"backendDOMNodeId"`
	FrameID          string          `json:"frameId"`
	ParentID         json.RawMessage `json:"parentId"` // unused, kept for decoding tolerance
}

// ParseNodes decodes the instrumentation layer's node list into the
// internal form. The source guarantees root-first ordering, which the
// compiler relies on.
func ParseNodes(raw json.RawMessage) ([]Node, error) {
	var wire []wireNode
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode accessibility nodes: %w", err)
	}
	nodes := make([]Node, 0, len(wire))
	for _, w := range wire {
		n := Node{
			ID:        w.NodeID,
			Ignored:   w.Ignored,
			Role:      w.Role.String(),
			Name:      w.Name.String(),
			Value:     w.Value.String(),
			ChildIDs:  w.ChildIDs,
			BackendID: w.BackendDOMNodeID,
			FrameID:   w.FrameID,
		}
		for _, p := range w.Properties {
			n.Properties = append(n.Properties, Property{Name: p.Name, Value: p.Value.String()})
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
