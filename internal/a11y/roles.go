package a11y

// interactiveRoles are roles a caller can act on. In interactive filtering
// mode only these are emitted; in any mode they are reference-eligible.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"textbox":          true,
	"searchbox":        true,
	"checkbox":         true,
	"radio":            true,
	"switch":           true,
	"combobox":         true,
	"listbox":          true,
	"option":           true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"slider":           true,
	"spinbutton":       true,
	"tab":              true,
	"treeitem":         true,
}

// contentRoles are non-interactive roles that still get a reference in
// full mode so callers can read them (get_text) or locate them.
var contentRoles = map[string]bool{
	"heading":      true,
	"img":          true,
	"image":        true,
	"cell":         true,
	"gridcell":     true,
	"columnheader": true,
	"rowheader":    true,
}

// noiseRoles are structural roles with no semantic value. Nodes with these
// roles are transparent: never emitted, children promoted to their depth.
var noiseRoles = map[string]bool{
	"none":                 true,
	"presentation":         true,
	"InlineTextBox":        true,
	"LineBreak":            true,
	"IframePresentational": true,
}

// genericRoles collapse transparently in full mode when they carry no
// name; a named generic is still shown as a grouping line.
var genericRoles = map[string]bool{
	"generic": true,
	"Section": true,
	"group":   true,
}

// textRoles render as plain text leaf lines in full mode.
var textRoles = map[string]bool{
	"text":       true,
	"StaticText": true,
}

// IsInteractive reports whether role is in the interactive set.
func IsInteractive(role string) bool { return interactiveRoles[role] }
