package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ox01024/bb-browser/internal/output"
	"github.com/ox01024/bb-browser/internal/protocol"
)

// commandBudget bounds one CLI invocation end to end. The daemon enforces
// its own per-command timeout; this only has to outlast it.
const commandBudget = 60 * time.Second

// ActionResult is the output for actions that produce no payload.
type ActionResult struct {
	OK     bool   `yaml:"ok"              json:"ok"`
	Action string `yaml:"action"          json:"action"`
	Ref    string `yaml:"ref,omitempty"   json:"ref,omitempty"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
}

// runCommand sends one command through the daemon and prints its result.
func runCommand(req *protocol.Request) error {
	req.Session = targetTab()
	ctx, cancel := context.WithTimeout(context.Background(), commandBudget)
	defer cancel()

	res, err := daemonClient().Send(ctx, req)
	if err != nil {
		return err
	}
	return printResult(req, res.Data)
}

// printResult decodes the payload into its action-specific shape so the
// serialized output has stable field names.
func printResult(req *protocol.Request, data json.RawMessage) error {
	v, err := decodeResult(req, data)
	if err != nil {
		return err
	}
	return output.Print(v)
}

// decodeResult maps a raw payload back to its typed form.
func decodeResult(req *protocol.Request, data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return ActionResult{OK: true, Action: string(req.Action), Ref: req.Ref}, nil
	}
	switch req.Action {
	case protocol.ActionSnapshot:
		return decodeAs[protocol.SnapshotData](data)
	case protocol.ActionGetText:
		return decodeAs[protocol.TextData](data)
	case protocol.ActionSelectOption:
		return decodeAs[protocol.SelectData](data)
	case protocol.ActionCheck, protocol.ActionUncheck:
		return decodeAs[protocol.CheckData](data)
	case protocol.ActionNavigate, protocol.ActionGoBack, protocol.ActionGoForward:
		return decodeAs[protocol.NavigateData](data)
	case protocol.ActionWaitFor:
		return decodeAs[protocol.WaitData](data)
	case protocol.ActionListTabs:
		return decodeAs[[]protocol.TabInfo](data)
	case protocol.ActionNewTab:
		return decodeAs[protocol.TabInfo](data)
	case protocol.ActionListFrames:
		return decodeAs[[]protocol.FrameInfo](data)
	case protocol.ActionGetConsole, protocol.ActionGetErrors:
		return decodeAs[[]protocol.ConsoleEntry](data)
	case protocol.ActionListRequests:
		return decodeAs[[]protocol.RequestEntry](data)
	case protocol.ActionHandleDialog:
		return decodeAs[protocol.DialogInfo](data)
	case protocol.ActionScreenshot:
		return decodeAs[protocol.ScreenshotData](data)
	default:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return v, nil
	}
}

func decodeAs[T any](data json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return v, nil
}
