package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

// defaultWaitBudget bounds wait_for when the request carries no budget.
const defaultWaitBudget = 5 * time.Second

// dispatch executes one command and always produces a response; a panic
// in a handler becomes a failed response rather than killing the agent.
func (a *Agent) dispatch(ctx context.Context, req *protocol.Request) (res *protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("command panicked", "id", req.ID, "action", req.Action, "panic", r)
			res = failure(req.ID, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := req.Validate(); err != nil {
		return failure(req.ID, err)
	}
	a.log.Info("command", "id", req.ID, "action", req.Action)

	// Browser-level actions need no page session.
	switch req.Action {
	case protocol.ActionListTabs:
		tabs, err := a.tabInfos(ctx)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, tabs)
	case protocol.ActionNewTab:
		tab, err := a.newTab(ctx, req.URL)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, tab)
	case protocol.ActionSelectTab:
		if err := a.selectTab(ctx, req.TabID); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)
	case protocol.ActionCloseTab:
		if err := a.closeTab(ctx, req.TabID); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)
	}

	session, err := a.ensureSession(ctx, req.Session)
	if err != nil {
		return failure(req.ID, err)
	}

	handle := req.Ref
	if handle != "" {
		if h, err := protocol.ParseRef(handle); err == nil {
			handle = h
		}
	}

	switch req.Action {
	case protocol.ActionNavigate:
		data, err := a.navigate(ctx, session, req.URL)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionGoBack:
		data, err := a.historyStep(ctx, session, -1)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionGoForward:
		data, err := a.historyStep(ctx, session, 1)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionSnapshot:
		data, err := a.snapshot(ctx, session, req)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionClick:
		if err := a.act.Click(ctx, session, handle); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionFill:
		if err := a.act.Fill(ctx, session, handle, req.Text); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionType:
		if handle != "" {
			if err := a.act.Focus(ctx, session, handle); err != nil {
				return failure(req.ID, err)
			}
		}
		if err := a.act.TypeText(ctx, session, req.Text); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionHover:
		if err := a.act.Hover(ctx, session, handle); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionPressKey:
		if err := a.act.PressKey(ctx, session, req.Key); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionScroll:
		dx, dy := req.DeltaX, req.DeltaY
		if dx == 0 && dy == 0 {
			dy = 600
		}
		expr := fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy)
		if _, err := a.evaluate(ctx, session, expr); err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, nil)

	case protocol.ActionCheck:
		data, err := a.act.SetChecked(ctx, session, handle, true)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionUncheck:
		data, err := a.act.SetChecked(ctx, session, handle, false)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionSelectOption:
		data, err := a.act.SelectOption(ctx, session, handle, req.Values[0])
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionGetText:
		text, err := a.act.GetText(ctx, session, handle)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, protocol.TextData{Text: text})

	case protocol.ActionScreenshot:
		data, err := a.screenshot(ctx, session, req.Format, req.Quality, req.Scale)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, data)

	case protocol.ActionListFrames:
		frames, err := a.listFrames(ctx, session)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, frames)

	case protocol.ActionHandleDialog:
		dialog := a.events.dialogInfo()
		if !dialog.Open {
			return failure(req.ID, fmt.Errorf("%w: no dialog is open", protocol.ErrNotFound))
		}
		params := map[string]any{"accept": *req.Accept}
		if req.PromptText != "" {
			params["promptText"] = req.PromptText
		}
		if _, err := a.browser.Call(ctx, session, "Page.handleJavaScriptDialog", params); err != nil {
			return failure(req.ID, err)
		}
		a.events.setDialog(protocol.DialogInfo{Open: false})
		return success(req.ID, dialog)

	case protocol.ActionListRequests:
		return success(req.ID, a.events.requestEntries(req.Filter))

	case protocol.ActionGetConsole:
		return success(req.ID, a.events.consoleEntries(false, req.Filter))

	case protocol.ActionGetErrors:
		return success(req.ID, a.events.consoleEntries(true, req.Filter))

	case protocol.ActionWaitFor:
		budget := defaultWaitBudget
		if req.TimeoutMS > 0 {
			budget = time.Duration(req.TimeoutMS) * time.Millisecond
		}
		elapsed, err := a.act.WaitFor(ctx, session, handle, budget)
		if err != nil {
			return failure(req.ID, err)
		}
		return success(req.ID, protocol.WaitData{ElapsedMS: elapsed.Milliseconds()})
	}

	return failure(req.ID, fmt.Errorf("unknown action %q", req.Action))
}
