package cmd

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ox01024/bb-browser/internal/client"
	"github.com/ox01024/bb-browser/internal/version"
)

// mcpServer exposes the browser commands as MCP tools, delegating every
// call to the daemon through the relay client.
type mcpServer struct {
	daemon *client.Client
	mcp    *mcpserver.MCPServer
}

func newMCPServer(daemon *client.Client) *mcpServer {
	s := &mcpServer{daemon: daemon}
	s.mcp = mcpserver.NewMCPServer("bb-browser", version.Version)
	s.registerTools()
	return s
}

func (s *mcpServer) serveStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

func (s *mcpServer) serveHTTP(addr string) error {
	return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
}

func (s *mcpServer) registerTools() {
	// snapshot
	s.mcp.AddTool(
		mcp.NewTool("browser_snapshot",
			mcp.WithDescription("Read the current page as a text snapshot of its accessibility tree. Interactive elements get [ref=N] handles that actuation tools accept. Handles stay valid until the next snapshot or navigation."),
			mcp.WithBoolean("interactive", mcp.Description("Emit only actionable elements, flattened")),
			mcp.WithBoolean("compact", mcp.Description("Drop structural container lines with no content")),
			mcp.WithNumber("max_depth", mcp.Description("Max nesting depth (0 = unlimited)")),
			mcp.WithString("selector", mcp.Description("Scope the snapshot to the first CSS selector match")),
			mcp.WithString("tab", mcp.Description("Target tab ID (default: current)")),
		),
		s.handleSnapshot,
	)

	// navigate
	s.mcp.AddTool(
		mcp.NewTool("browser_navigate",
			mcp.WithDescription("Navigate the current tab to a URL"),
			mcp.WithString("url", mcp.Description("URL to load"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleNavigate,
	)

	// back / forward
	s.mcp.AddTool(
		mcp.NewTool("browser_go_back",
			mcp.WithDescription("Go back one entry in the tab's history"),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleGoBack,
	)
	s.mcp.AddTool(
		mcp.NewTool("browser_go_forward",
			mcp.WithDescription("Go forward one entry in the tab's history"),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleGoForward,
	)

	// click
	s.mcp.AddTool(
		mcp.NewTool("browser_click",
			mcp.WithDescription("Click an element by its snapshot reference handle"),
			mcp.WithString("ref", mcp.Description("Reference handle from a snapshot (e.g. \"7\")"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleClick,
	)

	// hover
	s.mcp.AddTool(
		mcp.NewTool("browser_hover",
			mcp.WithDescription("Hover over an element by reference handle"),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleHover,
	)

	// fill
	s.mcp.AddTool(
		mcp.NewTool("browser_fill",
			mcp.WithDescription("Replace a field's content with text (clears first). Use browser_type to append."),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to set"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleFill,
	)

	// type
	s.mcp.AddTool(
		mcp.NewTool("browser_type",
			mcp.WithDescription("Type text character by character without clearing existing content. Optionally focus an element first."),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithString("ref", mcp.Description("Focus this element before typing")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleType,
	)

	// press key
	s.mcp.AddTool(
		mcp.NewTool("browser_press_key",
			mcp.WithDescription("Press a key or combo (e.g. 'Enter', 'Tab', 'ArrowDown', 'ctrl+a')"),
			mcp.WithString("key", mcp.Description("Key name, character, or combo"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handlePressKey,
	)

	// scroll
	s.mcp.AddTool(
		mcp.NewTool("browser_scroll",
			mcp.WithDescription("Scroll the page by pixel deltas (defaults to one screenful down)"),
			mcp.WithNumber("dx", mcp.Description("Horizontal scroll in CSS pixels")),
			mcp.WithNumber("dy", mcp.Description("Vertical scroll in CSS pixels")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleScroll,
	)

	// set checked
	s.mcp.AddTool(
		mcp.NewTool("browser_set_checked",
			mcp.WithDescription("Check or uncheck a checkbox/radio. Idempotent: no change event fires when already in the target state."),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithBoolean("checked", mcp.Description("Target state (default: true)")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleSetChecked,
	)

	// select option
	s.mcp.AddTool(
		mcp.NewTool("browser_select",
			mcp.WithDescription("Select a dropdown option by value or visible label. A miss lists the available options."),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithString("value", mcp.Description("Option value or label"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleSelect,
	)

	// get text
	s.mcp.AddTool(
		mcp.NewTool("browser_get_text",
			mcp.WithDescription("Read an element's rendered text"),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleGetText,
	)

	// wait for
	s.mcp.AddTool(
		mcp.NewTool("browser_wait_for",
			mcp.WithDescription("Wait until a handle resolves to a live element or the timeout elapses"),
			mcp.WithString("ref", mcp.Description("Reference handle"), mcp.Required()),
			mcp.WithNumber("timeout_ms", mcp.Description("Max milliseconds to wait (default: 5000)")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleWaitFor,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("browser_screenshot",
			mcp.WithDescription("Capture a screenshot of the current tab"),
			mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 80)")),
			mcp.WithNumber("scale", mcp.Description("Scale factor in (0,1); 0 keeps original size")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleScreenshot,
	)

	// tabs
	s.mcp.AddTool(
		mcp.NewTool("browser_tabs",
			mcp.WithDescription("Manage tabs: list, open, select, or close"),
			mcp.WithString("action", mcp.Description("One of: list, new, select, close (default: list)")),
			mcp.WithString("url", mcp.Description("URL for action=new")),
			mcp.WithString("tab_id", mcp.Description("Tab ID for action=select/close")),
		),
		s.handleTabs,
	)

	// frames
	s.mcp.AddTool(
		mcp.NewTool("browser_frames",
			mcp.WithDescription("List the current tab's frames"),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleFrames,
	)

	// console
	s.mcp.AddTool(
		mcp.NewTool("browser_console",
			mcp.WithDescription("List buffered console messages"),
			mcp.WithBoolean("errors_only", mcp.Description("Only errors and uncaught exceptions")),
			mcp.WithString("filter", mcp.Description("Substring filter on message text or URL")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleConsole,
	)

	// network requests
	s.mcp.AddTool(
		mcp.NewTool("browser_requests",
			mcp.WithDescription("List buffered network requests"),
			mcp.WithString("filter", mcp.Description("Substring filter on request URL")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleRequests,
	)

	// dialog
	s.mcp.AddTool(
		mcp.NewTool("browser_dialog",
			mcp.WithDescription("Accept or dismiss the open JavaScript dialog"),
			mcp.WithBoolean("accept", mcp.Description("true to accept, false to dismiss"), mcp.Required()),
			mcp.WithString("prompt_text", mcp.Description("Text to enter into a prompt dialog")),
			mcp.WithString("tab", mcp.Description("Target tab ID")),
		),
		s.handleDialog,
	)

	// status
	s.mcp.AddTool(
		mcp.NewTool("browser_status",
			mcp.WithDescription("Report whether the daemon is alive and the browser agent is connected"),
		),
		s.handleStatus,
	)
}
