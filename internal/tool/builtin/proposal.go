package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/proposal"
	"github.com/harunnryd/kaizen/internal/tool"
)

type ProposalTool struct {
	engine *proposal.Engine
}

func NewProposalTool(engine *proposal.Engine) *ProposalTool {
	return &ProposalTool{engine: engine}
}

func (t *ProposalTool) Name() string { return "proposal_tool" }

func (t *ProposalTool) Description() string {
	return "Lists and decides improvement proposals"
}

func (t *ProposalTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	switch action {
	case "list":
		return t.list(ctx, userID)
	case "approve":
		return t.approve(ctx, params, userID)
	case "reject":
		return t.reject(ctx, params, userID)
	case "rollback":
		return t.rollback(ctx, params, userID)
	default:
		return nil, fmt.Errorf("%w: proposal_tool has no action '%s'", tool.ErrUnknownAction, action)
	}
}

func (t *ProposalTool) list(ctx context.Context, userID string) (tool.Result, error) {
	proposals, err := t.engine.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return tool.Ok(map[string]any{
			"count":   0,
			"message": "No proposals.",
		}), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Proposals (%d):", len(proposals))
	items := make([]map[string]any, 0, len(proposals))
	for _, p := range proposals {
		items = append(items, map[string]any{
			"proposal_id": p.ID,
			"pattern":     p.Pattern,
			"status":      string(p.Status),
		})
		fmt.Fprintf(&b, "\n[%s] %s — %s (%s)", p.Status, p.ID, p.Pattern, p.Description)
	}
	return tool.Ok(map[string]any{
		"count":     len(proposals),
		"proposals": items,
		"message":   b.String(),
	}), nil
}

func (t *ProposalTool) approve(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	id, err := stringParam(params, "proposal_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	rule, err := t.engine.Approve(ctx, id, userID)
	if err != nil {
		return decisionFailure(err)
	}
	return tool.Ok(map[string]any{
		"proposal_id": id,
		"rule_id":     rule.ID,
		"message":     fmt.Sprintf("Proposal %s approved. Rule '%s' is now active.", id, rule.Pattern),
	}), nil
}

func (t *ProposalTool) reject(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	id, err := stringParam(params, "proposal_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	if err := t.engine.Reject(ctx, id, userID); err != nil {
		return decisionFailure(err)
	}
	return tool.Ok(map[string]any{
		"proposal_id": id,
		"message":     fmt.Sprintf("Proposal %s rejected.", id),
	}), nil
}

func (t *ProposalTool) rollback(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	id, err := stringParam(params, "proposal_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	deactivated, err := t.engine.Rollback(ctx, id, userID)
	if err != nil {
		return decisionFailure(err)
	}
	return tool.Ok(map[string]any{
		"proposal_id":       id,
		"rules_deactivated": deactivated,
		"message":           fmt.Sprintf("Proposal %s rolled back. %d rule(s) deactivated.", id, deactivated),
	}), nil
}

// decisionFailure renders expected lifecycle errors as domain failures and
// passes everything else up as an invocation error.
func decisionFailure(err error) (tool.Result, error) {
	switch {
	case errors.IsCategory(err, errors.ErrNotFound),
		errors.IsCategory(err, errors.ErrPermissionDenied),
		errors.IsCategory(err, errors.ErrConflict),
		errors.IsCategory(err, errors.ErrInvalidInput):
		return tool.Fail(err.Error()), nil
	default:
		return nil, err
	}
}
