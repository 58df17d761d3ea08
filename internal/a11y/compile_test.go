package a11y

import (
	"strings"
	"testing"
)

func n(id, role, name string, backend int, children ...string) Node {
	return Node{ID: id, Role: role, Name: name, BackendID: backend, ChildIDs: children}
}

// pageNodes is a small but representative tree: a heading, a button
// behind an unnamed generic wrapper, a text leaf, and a link.
func pageNodes() []Node {
	return []Node{
		n("1", "RootWebArea", "Example", 101, "2", "3", "4"),
		n("2", "heading", "Welcome", 102),
		n("3", "generic", "", 103, "5", "6"),
		n("5", "button", "Save", 105),
		n("6", "StaticText", "Hello world", 106),
		n("4", "link", "Docs", 104, "7"),
		n("7", "StaticText", "Docs", 107),
	}
}

func TestCompileFullMode(t *testing.T) {
	res := Compile(pageNodes(), map[int]string{104: "https://docs.example.com"}, Options{Mode: ModeFull})

	want := strings.Join([]string{
		`- RootWebArea "Example"`,
		`  - heading "Welcome" [ref=0]`,
		`  - button "Save" [ref=1]`,
		`  - text: Hello world`,
		`  - link "Docs" [ref=2]`,
		`    - /url: https://docs.example.com`,
		`    - text: Docs`,
	}, "\n")
	if res.Text != want {
		t.Errorf("full snapshot mismatch:\ngot:\n%s\nwant:\n%s", res.Text, want)
	}

	if len(res.Refs) != 3 {
		t.Fatalf("refs = %d, want 3", len(res.Refs))
	}
	for i, e := range res.Refs {
		if e.Handle != []string{"0", "1", "2"}[i] {
			t.Errorf("ref %d handle = %q", i, e.Handle)
		}
		if e.BackendID == 0 {
			t.Errorf("ref %d has no backing element", i)
		}
	}
	if res.Refs[1].Role != "button" || res.Refs[1].Name != "Save" {
		t.Errorf("ref 1 = %+v, want button Save", res.Refs[1])
	}
}

func TestCompileInteractiveMode(t *testing.T) {
	res := Compile(pageNodes(), nil, Options{Mode: ModeInteractive})

	want := strings.Join([]string{
		`- button "Save" [ref=0]`,
		`- link "Docs" [ref=1]`,
	}, "\n")
	if res.Text != want {
		t.Errorf("interactive snapshot mismatch:\ngot:\n%s\nwant:\n%s", res.Text, want)
	}
	// Content roles (the heading) must not consume handles here.
	if len(res.Refs) != 2 {
		t.Errorf("refs = %d, want 2", len(res.Refs))
	}
}

func TestCompileDeterministic(t *testing.T) {
	a := Compile(pageNodes(), nil, Options{})
	b := Compile(pageNodes(), nil, Options{})
	if a.Text != b.Text {
		t.Error("same tree compiled to different text")
	}
	if len(a.Refs) != len(b.Refs) {
		t.Fatal("same tree produced different ref counts")
	}
	for i := range a.Refs {
		if a.Refs[i] != b.Refs[i] {
			t.Errorf("ref %d differs between runs: %+v vs %+v", i, a.Refs[i], b.Refs[i])
		}
	}
}

func TestCompileDuplicateMarkers(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Form", 1, "2", "3", "4"),
		n("2", "button", "Save", 2),
		n("3", "button", "Cancel", 3),
		n("4", "button", "Save", 4),
	}
	res := Compile(nodes, nil, Options{Mode: ModeInteractive})

	want := strings.Join([]string{
		`- button "Save" [ref=0]`,
		`- button "Cancel" [ref=1]`,
		`- button "Save" (1) [ref=2]`,
	}, "\n")
	if res.Text != want {
		t.Errorf("dup markers mismatch:\ngot:\n%s\nwant:\n%s", res.Text, want)
	}

	if res.Refs[0].DupIndex != 0 || res.Refs[2].DupIndex != 1 {
		t.Errorf("dup indexes = %d, %d, want 0, 1", res.Refs[0].DupIndex, res.Refs[2].DupIndex)
	}
	// Both handles still resolve to distinct backing elements.
	if res.Refs[0].BackendID == res.Refs[2].BackendID {
		t.Error("duplicate-named buttons share a backing element")
	}
}

func TestCompileEmptyTree(t *testing.T) {
	for _, nodes := range [][]Node{
		nil,
		{{ID: "1", Ignored: true}},
		{n("1", "none", "", 1)},
	} {
		res := Compile(nodes, nil, Options{})
		if res.Text != EmptyPlaceholder {
			t.Errorf("empty tree rendered %q, want placeholder", res.Text)
		}
		if len(res.Refs) != 0 {
			t.Errorf("empty tree produced %d refs", len(res.Refs))
		}
	}
}

func TestCompileIgnoredNodesAreTransparent(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2"),
		{ID: "2", Ignored: true, Role: "generic", ChildIDs: []string{"3"}},
		n("3", "button", "Go", 3),
	}
	res := Compile(nodes, nil, Options{Mode: ModeFull})
	want := strings.Join([]string{
		`- RootWebArea "Page"`,
		`  - button "Go" [ref=0]`,
	}, "\n")
	if res.Text != want {
		t.Errorf("ignored transparency mismatch:\ngot:\n%s\nwant:\n%s", res.Text, want)
	}
}

func TestCompileTextTruncation(t *testing.T) {
	long := strings.Repeat("x", 200)
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2"),
		n("2", "StaticText", long, 2),
	}
	res := Compile(nodes, nil, Options{Mode: ModeFull})

	wantText := "- text: " + strings.Repeat("x", 80) + "…"
	if !strings.Contains(res.Text, wantText) {
		t.Errorf("long text not truncated to 80 runes:\n%s", res.Text)
	}
	if strings.Contains(res.Text, strings.Repeat("x", 81)) {
		t.Error("truncated text still longer than the display limit")
	}
}

func TestCompileMaxDepth(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2"),
		n("2", "generic", "", 2, "3"), // transparent, consumes no depth
		n("3", "navigation", "Menu", 3, "4"),
		n("4", "button", "Go", 4),
	}

	shallow := Compile(nodes, nil, Options{Mode: ModeFull, MaxDepth: 1})
	if strings.Contains(shallow.Text, "Menu") || strings.Contains(shallow.Text, "Go") {
		t.Errorf("max-depth 1 leaked deeper levels:\n%s", shallow.Text)
	}

	mid := Compile(nodes, nil, Options{Mode: ModeFull, MaxDepth: 2})
	if !strings.Contains(mid.Text, "Menu") {
		t.Errorf("max-depth 2 lost depth-1 element:\n%s", mid.Text)
	}
	if strings.Contains(mid.Text, "Go") {
		t.Errorf("max-depth 2 leaked depth-2 element:\n%s", mid.Text)
	}

	full := Compile(nodes, nil, Options{Mode: ModeFull})
	if !strings.Contains(full.Text, "Go") {
		t.Errorf("unlimited depth lost the leaf button:\n%s", full.Text)
	}
}

func TestCompileCompactDropsEmptyContainers(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "", 1, "2", "3"),
		n("2", "navigation", "", 2),
		n("3", "main", "", 3, "4"),
		n("4", "button", "Submit", 4),
	}
	full := Compile(nodes, nil, Options{Mode: ModeFull})
	compact := Compile(nodes, nil, Options{Mode: ModeFull, Compact: true})

	if strings.Contains(compact.Text, "navigation") {
		t.Errorf("compact kept a childless container:\n%s", compact.Text)
	}
	if !strings.Contains(compact.Text, "main") {
		t.Errorf("compact dropped a container with content:\n%s", compact.Text)
	}

	// Compact output must be a line subsequence of the full output.
	fullLines := strings.Split(full.Text, "\n")
	j := 0
	for _, cl := range strings.Split(compact.Text, "\n") {
		found := false
		for ; j < len(fullLines); j++ {
			if fullLines[j] == cl {
				found = true
				j++
				break
			}
		}
		if !found {
			t.Fatalf("compact line %q is not a subsequence of the full output", cl)
		}
	}

	// Handles are identical in both renderings.
	if len(full.Refs) != len(compact.Refs) {
		t.Fatalf("compact changed ref count: %d vs %d", len(full.Refs), len(compact.Refs))
	}
	for i := range full.Refs {
		if full.Refs[i] != compact.Refs[i] {
			t.Errorf("ref %d differs under compaction", i)
		}
	}
}

func TestCompileCycleTerminates(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2"),
		n("2", "navigation", "Loop", 2, "1"),
	}
	res := Compile(nodes, nil, Options{Mode: ModeFull})
	if strings.Count(res.Text, "Loop") != 1 {
		t.Errorf("cycle emitted more than once:\n%s", res.Text)
	}
}

func TestCompileDanglingChildIgnored(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2", "404"),
		n("2", "button", "OK", 2),
	}
	res := Compile(nodes, nil, Options{Mode: ModeFull})
	if !strings.Contains(res.Text, `button "OK"`) {
		t.Errorf("dangling child broke traversal:\n%s", res.Text)
	}
}

func TestCompileNoBackendNoRef(t *testing.T) {
	nodes := []Node{
		n("1", "RootWebArea", "Page", 1, "2", "3"),
		n("2", "button", "Ghost", 0), // no backing element
		n("3", "button", "Real", 3),
	}
	res := Compile(nodes, nil, Options{Mode: ModeInteractive})
	if len(res.Refs) != 1 || res.Refs[0].Name != "Real" {
		t.Fatalf("refs = %+v, want only the backed button", res.Refs)
	}
	if !strings.Contains(res.Text, `- button "Ghost"`) {
		t.Errorf("unbacked element vanished entirely:\n%s", res.Text)
	}
	if strings.Contains(res.Text, `Ghost" [ref=`) {
		t.Errorf("unbacked element was assigned a handle:\n%s", res.Text)
	}
}
