package a11y

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ox01024/bb-browser/internal/refs"
)

// Mode selects which nodes a snapshot emits.
type Mode string

const (
	// ModeFull emits the whole semantic tree, including text content.
	ModeFull Mode = "full"
	// ModeInteractive emits only actionable elements, flattened.
	ModeInteractive Mode = "interactive"
)

// Options control one snapshot compilation.
type Options struct {
	Mode Mode
	// MaxDepth limits emitted nesting levels; 0 means unlimited.
	// Transparent nodes do not consume depth.
	MaxDepth int
	// Compact drops structural lines with no renderable descendants.
	Compact bool
}

// Result is a compiled snapshot: the rendered text and the reference
// table to commit to the tracker for the originating session.
type Result struct {
	Text string
	Refs []refs.Entry
}

// EmptyPlaceholder is emitted instead of an empty document.
const EmptyPlaceholder = "(empty accessibility tree)"

// textDisplayLimit is the maximum rune count shown for a text leaf;
// overflow is replaced with an ellipsis.
const textDisplayLimit = 80

type lineKind int

const (
	lineElement lineKind = iota
	lineText
	lineLink
)

type line struct {
	depth  int
	kind   lineKind
	role   string
	name   string
	text   string // text leaf content or resolved link target
	refIdx int    // index into the reference table, -1 when none
}

type compiler struct {
	index   map[string]Node
	links   map[int]string
	opts    Options
	lines   []line
	refs    []refs.Entry
	nextRef int
}

// Compile converts a raw node list (root first) plus a map from
// backing-element ID to resolved hyperlink target into a snapshot.
// Malformed input degrades by skipping: dangling child references and
// repeated nodes are ignored, never fatal.
func Compile(nodes []Node, linkTargets map[int]string, opts Options) Result {
	if opts.Mode == "" {
		opts.Mode = ModeFull
	}
	c := &compiler{
		index: make(map[string]Node, len(nodes)),
		links: linkTargets,
		opts:  opts,
	}
	for _, n := range nodes {
		if _, dup := c.index[n.ID]; !dup {
			c.index[n.ID] = n
		}
	}
	if len(nodes) > 0 {
		c.visit(nodes[0].ID, 0, make(map[string]bool))
	}

	c.assignDupIndexes()
	if opts.Compact {
		c.lines = compactLines(c.lines)
	}

	text := c.render()
	if text == "" {
		text = EmptyPlaceholder
	}
	return Result{Text: text, Refs: c.refs}
}

func (c *compiler) visit(id string, depth int, onPath map[string]bool) {
	node, ok := c.index[id]
	if !ok || onPath[id] {
		return
	}
	onPath[id] = true
	defer delete(onPath, id)

	// Transparent nodes are skipped but their children stay at this depth.
	if node.Ignored || noiseRoles[node.Role] {
		c.visitChildren(node, depth, onPath)
		return
	}

	if c.opts.Mode == ModeInteractive {
		if !interactiveRoles[node.Role] {
			c.visitChildren(node, depth, onPath)
			return
		}
		if c.depthExceeded(depth) {
			return
		}
		// Interactive nodes are flattened: one line, no children.
		c.emitElement(node, depth)
		return
	}

	// Full mode.
	if textRoles[node.Role] {
		if c.depthExceeded(depth) {
			return
		}
		content := node.Name
		if content == "" {
			content = node.Value
		}
		if content != "" {
			c.lines = append(c.lines, line{depth: depth, kind: lineText, text: truncateText(content), refIdx: -1})
		}
		return
	}
	if node.Name == "" && (genericRoles[node.Role] || node.Role == "") {
		c.visitChildren(node, depth, onPath)
		return
	}
	if c.depthExceeded(depth) {
		return
	}
	c.emitElement(node, depth)
	if node.Role == "link" {
		if target := c.links[node.BackendID]; target != "" {
			c.lines = append(c.lines, line{depth: depth + 1, kind: lineLink, text: target, refIdx: -1})
		}
	}
	c.visitChildren(node, depth+1, onPath)
}

func (c *compiler) visitChildren(node Node, depth int, onPath map[string]bool) {
	for _, childID := range node.ChildIDs {
		c.visit(childID, depth, onPath)
	}
}

func (c *compiler) depthExceeded(depth int) bool {
	return c.opts.MaxDepth > 0 && depth >= c.opts.MaxDepth
}

func (c *compiler) emitElement(node Node, depth int) {
	refIdx := -1
	if c.refEligible(node) {
		handle := strconv.Itoa(c.nextRef)
		c.nextRef++
		c.refs = append(c.refs, refs.Entry{
			Handle:    handle,
			BackendID: node.BackendID,
			Role:      node.Role,
			Name:      node.Name,
		})
		refIdx = len(c.refs) - 1
	}
	c.lines = append(c.lines, line{
		depth:  depth,
		kind:   lineElement,
		role:   node.Role,
		name:   node.Name,
		refIdx: refIdx,
	})
}

// refEligible: interactive roles always; content-bearing roles only in
// full mode. A backing-element ID is required either way, since a handle
// without one could never be actioned.
func (c *compiler) refEligible(node Node) bool {
	if node.BackendID == 0 {
		return false
	}
	if interactiveRoles[node.Role] {
		return true
	}
	return c.opts.Mode == ModeFull && contentRoles[node.Role]
}

// assignDupIndexes marks repeated (role, name) pairs after traversal.
// Duplicate status is only knowable once the walk completes, so this is a
// single cleanup pass: the first occurrence keeps index 0 (no marker),
// later ones get 1, 2, ...; singleton groups are untouched.
func (c *compiler) assignDupIndexes() {
	counts := make(map[string]int, len(c.refs))
	for i := range c.refs {
		key := c.refs[i].Role + "\x00" + c.refs[i].Name
		c.refs[i].DupIndex = counts[key]
		counts[key]++
	}
}

func structural(ln line) bool {
	return ln.kind == lineElement && ln.refIdx < 0 && ln.name == ""
}

// compactLines drops structural lines unless some descendant line (deeper
// indentation, before the depth returns to this level) carries a reference
// marker, a quoted name, or a text/link-target marker. The output is
// always a subsequence of the input.
func compactLines(lines []line) []line {
	kept := lines[:0:0]
	for i, ln := range lines {
		if !structural(ln) {
			kept = append(kept, ln)
			continue
		}
		for j := i + 1; j < len(lines) && lines[j].depth > ln.depth; j++ {
			if !structural(lines[j]) {
				kept = append(kept, ln)
				break
			}
		}
	}
	return kept
}

func (c *compiler) render() string {
	var b strings.Builder
	for _, ln := range c.lines {
		for i := 0; i < ln.depth; i++ {
			b.WriteString("  ")
		}
		b.WriteString("- ")
		switch ln.kind {
		case lineText:
			b.WriteString("text: ")
			b.WriteString(ln.text)
		case lineLink:
			b.WriteString("/url: ")
			b.WriteString(ln.text)
		case lineElement:
			b.WriteString(ln.role)
			if ln.name != "" {
				if ln.role != "" {
					b.WriteByte(' ')
				}
				b.WriteString(strconv.Quote(ln.name))
			}
			if ln.refIdx >= 0 {
				e := c.refs[ln.refIdx]
				if e.DupIndex > 0 {
					fmt.Fprintf(&b, " (%d)", e.DupIndex)
				}
				fmt.Fprintf(&b, " [ref=%s]", e.Handle)
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func truncateText(s string) string {
	runes := []rune(s)
	if len(runes) <= textDisplayLimit {
		return s
	}
	return string(runes[:textDisplayLimit]) + "…"
}
