package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// Param helpers over request.GetArguments() maps. MCP numbers arrive as
// float64 regardless of the declared schema type.

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// relay sends one command to the daemon and serializes the typed result
// as YAML for the tool response.
func (s *mcpServer) relay(ctx context.Context, req *protocol.Request) (*mcp.CallToolResult, error) {
	res, err := s.daemon.Send(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := decodeResult(req, res.Data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	mode := "full"
	if boolParam(params, "interactive", false) {
		mode = "interactive"
	}
	req := &protocol.Request{
		Action:   protocol.ActionSnapshot,
		Session:  stringParam(params, "tab", ""),
		Mode:     mode,
		Compact:  boolParam(params, "compact", false),
		MaxDepth: intParam(params, "max_depth", 0),
		Selector: stringParam(params, "selector", ""),
	}
	res, err := s.daemon.Send(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := decodeResult(req, res.Data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, ok := v.(protocol.SnapshotData)
	if !ok {
		return mcp.NewToolResultError("unexpected snapshot payload"), nil
	}
	// Plain text, not YAML: the snapshot is already agent-readable.
	header := fmt.Sprintf("url: %s\ntitle: %s\nrefs: %d\n\n", data.URL, data.Title, data.Refs)
	return mcp.NewToolResultText(header + data.Snapshot), nil
}

func (s *mcpServer) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionNavigate,
		Session: stringParam(params, "tab", ""),
		URL:     stringParam(params, "url", ""),
	})
}

func (s *mcpServer) handleGoBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionGoBack,
		Session: stringParam(params, "tab", ""),
	})
}

func (s *mcpServer) handleGoForward(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionGoForward,
		Session: stringParam(params, "tab", ""),
	})
}

func (s *mcpServer) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionClick,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
	})
}

func (s *mcpServer) handleHover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionHover,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
	})
}

func (s *mcpServer) handleFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionFill,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
		Text:    stringParam(params, "text", ""),
	})
}

func (s *mcpServer) handleType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionType,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
		Text:    stringParam(params, "text", ""),
	})
}

func (s *mcpServer) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionPressKey,
		Session: stringParam(params, "tab", ""),
		Key:     stringParam(params, "key", ""),
	})
}

func (s *mcpServer) handleScroll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionScroll,
		Session: stringParam(params, "tab", ""),
		DeltaX:  intParam(params, "dx", 0),
		DeltaY:  intParam(params, "dy", 0),
	})
}

func (s *mcpServer) handleSetChecked(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	action := protocol.ActionCheck
	if !boolParam(params, "checked", true) {
		action = protocol.ActionUncheck
	}
	return s.relay(ctx, &protocol.Request{
		Action:  action,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
	})
}

func (s *mcpServer) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionSelectOption,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
		Values:  []string{stringParam(params, "value", "")},
	})
}

func (s *mcpServer) handleGetText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionGetText,
		Session: stringParam(params, "tab", ""),
		Ref:     stringParam(params, "ref", ""),
	})
}

func (s *mcpServer) handleWaitFor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:    protocol.ActionWaitFor,
		Session:   stringParam(params, "tab", ""),
		Ref:       stringParam(params, "ref", ""),
		TimeoutMS: intParam(params, "timeout_ms", 0),
	})
}

func (s *mcpServer) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	req := &protocol.Request{
		Action:  protocol.ActionScreenshot,
		Session: stringParam(params, "tab", ""),
		Format:  stringParam(params, "format", "png"),
		Quality: intParam(params, "quality", 80),
		Scale:   floatParam(params, "scale", 0),
	}
	res, err := s.daemon.Send(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := decodeResult(req, res.Data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	shot, ok := v.(protocol.ScreenshotData)
	if !ok {
		return mcp.NewToolResultError("unexpected screenshot payload"), nil
	}
	mimeType := "image/png"
	if shot.Format == "jpeg" {
		mimeType = "image/jpeg"
	}
	return mcp.NewToolResultImage("screenshot", shot.Base64, mimeType), nil
}

func (s *mcpServer) handleTabs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	switch action := stringParam(params, "action", "list"); action {
	case "list":
		return s.relay(ctx, &protocol.Request{Action: protocol.ActionListTabs})
	case "new":
		return s.relay(ctx, &protocol.Request{
			Action: protocol.ActionNewTab,
			URL:    stringParam(params, "url", ""),
		})
	case "select":
		return s.relay(ctx, &protocol.Request{
			Action: protocol.ActionSelectTab,
			TabID:  stringParam(params, "tab_id", ""),
		})
	case "close":
		return s.relay(ctx, &protocol.Request{
			Action: protocol.ActionCloseTab,
			TabID:  stringParam(params, "tab_id", ""),
		})
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown tabs action %q (use list, new, select, close)", action)), nil
	}
}

func (s *mcpServer) handleFrames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionListFrames,
		Session: stringParam(params, "tab", ""),
	})
}

func (s *mcpServer) handleConsole(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	action := protocol.ActionGetConsole
	if boolParam(params, "errors_only", false) {
		action = protocol.ActionGetErrors
	}
	return s.relay(ctx, &protocol.Request{
		Action:  action,
		Session: stringParam(params, "tab", ""),
		Filter:  stringParam(params, "filter", ""),
	})
}

func (s *mcpServer) handleRequests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	return s.relay(ctx, &protocol.Request{
		Action:  protocol.ActionListRequests,
		Session: stringParam(params, "tab", ""),
		Filter:  stringParam(params, "filter", ""),
	})
}

func (s *mcpServer) handleDialog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	accept := boolParam(params, "accept", true)
	return s.relay(ctx, &protocol.Request{
		Action:     protocol.ActionHandleDialog,
		Session:    stringParam(params, "tab", ""),
		Accept:     &accept,
		PromptText: stringParam(params, "prompt_text", ""),
	})
}

func (s *mcpServer) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.daemon.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := yaml.Marshal(status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
