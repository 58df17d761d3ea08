package protocol

// Action-specific result payloads, shared by the agent (producer) and the
// CLI/MCP clients (consumers). All are carried in Response.Data as JSON.

// SnapshotData is the result of a snapshot command.
type SnapshotData struct {
	URL      string `json:"url,omitempty"      yaml:"url,omitempty"`
	Title    string `json:"title,omitempty"    yaml:"title,omitempty"`
	Snapshot string `json:"snapshot"           yaml:"snapshot"`
	Refs     int    `json:"refs"               yaml:"refs"`
}

// PlainText returns the rendered snapshot for text-mode output.
func (d SnapshotData) PlainText() string { return d.Snapshot }

// TextData is the result of a get_text command.
type TextData struct {
	Text string `json:"text" yaml:"text"`
}

// PlainText returns the extracted text for text-mode output.
func (d TextData) PlainText() string { return d.Text }

// SelectData reports which option value ended up selected.
type SelectData struct {
	SelectedValue string `json:"selectedValue" yaml:"selectedValue"`
}

// CheckData reports the outcome of an idempotent check/uncheck.
type CheckData struct {
	Checked bool `json:"checked" yaml:"checked"`
	Changed bool `json:"changed" yaml:"changed"`
}

// ScreenshotData carries an encoded image.
type ScreenshotData struct {
	Format string `json:"format" yaml:"format"`
	Base64 string `json:"base64" yaml:"base64"`
}

// NavigateData is the result of navigate/go_back/go_forward.
type NavigateData struct {
	URL string `json:"url" yaml:"url"`
}

// WaitData is the result of wait_for.
type WaitData struct {
	ElapsedMS int64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// TabInfo describes one browser tab.
type TabInfo struct {
	ID     string `json:"id"               yaml:"id"`
	URL    string `json:"url"              yaml:"url"`
	Title  string `json:"title,omitempty"  yaml:"title,omitempty"`
	Active bool   `json:"active,omitempty" yaml:"active,omitempty"`
}

// FrameInfo describes one frame in a page's frame tree.
type FrameInfo struct {
	ID       string `json:"id"                  yaml:"id"`
	URL      string `json:"url"                 yaml:"url"`
	Name     string `json:"name,omitempty"      yaml:"name,omitempty"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// ConsoleEntry is one buffered console message.
type ConsoleEntry struct {
	Level string `json:"level"          yaml:"level"`
	Text  string `json:"text"           yaml:"text"`
	URL   string `json:"url,omitempty"  yaml:"url,omitempty"`
	Line  int    `json:"line,omitempty" yaml:"line,omitempty"`
	TS    int64  `json:"ts"             yaml:"ts"`
}

// RequestEntry is one buffered network request.
type RequestEntry struct {
	Method string `json:"method"           yaml:"method"`
	URL    string `json:"url"              yaml:"url"`
	Status int    `json:"status,omitempty" yaml:"status,omitempty"`
	Type   string `json:"type,omitempty"   yaml:"type,omitempty"`
	TS     int64  `json:"ts"               yaml:"ts"`
}

// DialogInfo describes the most recent JavaScript dialog, if any.
type DialogInfo struct {
	Open    bool   `json:"open"              yaml:"open"`
	Type    string `json:"type,omitempty"    yaml:"type,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// StatusData is the daemon's status report.
type StatusData struct {
	Alive     bool   `json:"alive"     yaml:"alive"`
	Connected bool   `json:"connected" yaml:"connected"`
	Pending   int    `json:"pending"   yaml:"pending"`
	Uptime    string `json:"uptime"    yaml:"uptime"`
}
