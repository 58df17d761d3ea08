package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ActionKind identifies one browser command. The set is closed: anything
// not listed here is rejected at validation time.
type ActionKind string

const (
	ActionNavigate     ActionKind = "navigate"
	ActionGoBack       ActionKind = "go_back"
	ActionGoForward    ActionKind = "go_forward"
	ActionSnapshot     ActionKind = "snapshot"
	ActionClick        ActionKind = "click"
	ActionFill         ActionKind = "fill"
	ActionType         ActionKind = "type"
	ActionHover        ActionKind = "hover"
	ActionPressKey     ActionKind = "press_key"
	ActionScroll       ActionKind = "scroll"
	ActionCheck        ActionKind = "check"
	ActionUncheck      ActionKind = "uncheck"
	ActionSelectOption ActionKind = "select_option"
	ActionGetText      ActionKind = "get_text"
	ActionScreenshot   ActionKind = "screenshot"
	ActionListTabs     ActionKind = "list_tabs"
	ActionNewTab       ActionKind = "new_tab"
	ActionSelectTab    ActionKind = "select_tab"
	ActionCloseTab     ActionKind = "close_tab"
	ActionListFrames   ActionKind = "list_frames"
	ActionHandleDialog ActionKind = "handle_dialog"
	ActionListRequests ActionKind = "list_requests"
	ActionGetConsole   ActionKind = "get_console"
	ActionGetErrors    ActionKind = "get_errors"
	ActionWaitFor      ActionKind = "wait_for"
)

// Request is one command sent from a caller through the daemon to the
// agent. The ID is caller-generated and unique for the lifetime of one
// pending-table entry; fields beyond ID/Action are action-specific.
type Request struct {
	ID      string     `json:"id"`
	Action  ActionKind `json:"action"`
	Session string     `json:"session,omitempty"`

	Ref      string   `json:"ref,omitempty"`
	Text     string   `json:"text,omitempty"`
	URL      string   `json:"url,omitempty"`
	Key      string   `json:"key,omitempty"`
	Values   []string `json:"values,omitempty"`
	Selector string   `json:"selector,omitempty"`
	Filter   string   `json:"filter,omitempty"`
	TabID    string   `json:"tab_id,omitempty"`

	// Snapshot options.
	Mode     string `json:"mode,omitempty"`
	Compact  bool   `json:"compact,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`

	// Scroll deltas in CSS pixels.
	DeltaX int `json:"dx,omitempty"`
	DeltaY int `json:"dy,omitempty"`

	// Dialog handling.
	Accept     *bool  `json:"accept,omitempty"`
	PromptText string `json:"prompt_text,omitempty"`

	// Screenshot options.
	Format  string  `json:"format,omitempty"`
	Quality int     `json:"quality,omitempty"`
	Scale   float64 `json:"scale,omitempty"`

	// wait_for budget in milliseconds.
	TimeoutMS int `json:"timeout_ms,omitempty"`
}

// Response mirrors the request ID. Exactly one response is produced per
// accepted request; timeouts synthesize one on the daemon side.
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Ack is the envelope returned to the agent when it posts a result.
// Code 0 means the result matched a pending request; code 1 means it was
// late or duplicate and was dropped. Both are HTTP 200.
type Ack struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	AckMatched   = 0
	AckUnmatched = 1
)

// NewRequestID returns a fresh caller-generated request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// refActions are the actions that address a previously snapshotted element.
var refActions = map[ActionKind]bool{
	ActionClick:        true,
	ActionFill:         true,
	ActionHover:        true,
	ActionCheck:        true,
	ActionUncheck:      true,
	ActionSelectOption: true,
	ActionGetText:      true,
	ActionWaitFor:      true,
}

// Validate checks the action tag and its action-specific payload. Unknown
// actions are rejected explicitly rather than falling through.
func (r *Request) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("request id is required")
	}
	switch r.Action {
	case ActionNavigate:
		if r.URL == "" {
			return fmt.Errorf("navigate requires url")
		}
	case ActionGoBack, ActionGoForward, ActionSnapshot, ActionScreenshot,
		ActionListTabs, ActionListFrames, ActionListRequests,
		ActionGetConsole, ActionGetErrors, ActionScroll:
		// No required payload.
	case ActionClick, ActionHover, ActionCheck, ActionUncheck, ActionGetText, ActionWaitFor:
		if r.Ref == "" {
			return fmt.Errorf("%s requires ref", r.Action)
		}
	case ActionFill:
		if r.Ref == "" {
			return fmt.Errorf("fill requires ref")
		}
	case ActionType:
		if r.Text == "" {
			return fmt.Errorf("type requires text")
		}
	case ActionPressKey:
		if r.Key == "" {
			return fmt.Errorf("press_key requires key")
		}
	case ActionSelectOption:
		if r.Ref == "" {
			return fmt.Errorf("select_option requires ref")
		}
		if len(r.Values) == 0 {
			return fmt.Errorf("select_option requires at least one value")
		}
	case ActionSelectTab, ActionCloseTab:
		if r.TabID == "" {
			return fmt.Errorf("%s requires tab_id", r.Action)
		}
	case ActionNewTab:
		// URL optional; blank opens about:blank.
	case ActionHandleDialog:
		if r.Accept == nil {
			return fmt.Errorf("handle_dialog requires accept")
		}
	default:
		return fmt.Errorf("unknown action %q", r.Action)
	}
	if r.Ref != "" && refActions[r.Action] {
		if _, err := ParseRef(r.Ref); err != nil {
			return err
		}
	}
	return nil
}
