package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/approval"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
)

// ApprovalTool is the user-facing face of the approval state machine: it
// lists pending requests and forwards approve/reject decisions.
type ApprovalTool struct {
	service *approval.Service
}

func NewApprovalTool(svc *approval.Service) *ApprovalTool {
	return &ApprovalTool{service: svc}
}

func (t *ApprovalTool) Name() string { return "approval_tool" }

func (t *ApprovalTool) Description() string {
	return "Lists and decides pending approval requests"
}

func (t *ApprovalTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	switch action {
	case "approve":
		return t.decide(ctx, params, userID, true)
	case "reject":
		return t.decide(ctx, params, userID, false)
	case "list":
		return t.list(ctx, userID)
	default:
		return nil, fmt.Errorf("%w: approval_tool has no action '%s'", tool.ErrUnknownAction, action)
	}
}

func (t *ApprovalTool) decide(ctx context.Context, params map[string]any, userID string, approve bool) (tool.Result, error) {
	id, err := stringParam(params, "approval_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	decision, err := t.service.Decide(ctx, id, userID, approve)
	if err != nil {
		return decisionFailure(err)
	}

	if !approve {
		return tool.Ok(map[string]any{
			"approval_id": id,
			"status":      string(decision.Status),
			"message":     fmt.Sprintf("Approval %s rejected. Nothing was executed.", id),
		}), nil
	}

	message := fmt.Sprintf("Approval %s granted.", id)
	if decision.Executed != nil {
		for _, step := range decision.Executed.Steps {
			if step.Err != "" {
				message += fmt.Sprintf("\nStep %s.%s failed: %s", step.Tool, step.Action, step.Err)
				continue
			}
			if msg, ok := step.Result["message"].(string); ok && msg != "" {
				message += "\n" + msg
			}
		}
	}
	return tool.Ok(map[string]any{
		"approval_id": id,
		"status":      string(decision.Status),
		"message":     message,
	}), nil
}

func (t *ApprovalTool) list(ctx context.Context, userID string) (tool.Result, error) {
	approvals, err := t.service.List(ctx, userID, store.ApprovalPending)
	if err != nil {
		return nil, err
	}
	if len(approvals) == 0 {
		return tool.Ok(map[string]any{
			"count":   0,
			"message": "No pending approvals.",
		}), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pending approvals (%d):", len(approvals))
	items := make([]map[string]any, 0, len(approvals))
	for _, a := range approvals {
		items = append(items, map[string]any{
			"approval_id": a.ID,
			"action_type": a.ActionType,
		})
		fmt.Fprintf(&b, "\n%s — %s", a.ID, a.ActionType)
	}
	return tool.Ok(map[string]any{
		"count":     len(approvals),
		"approvals": items,
		"message":   b.String(),
	}), nil
}
