package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/prefs"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
)

// BriefTool composes the daily brief from open tasks and pending decisions.
// The scheduler fires it on the cron, and 'daily' triggers it on demand.
type BriefTool struct {
	store *store.Store
	prefs *prefs.Service
}

func NewBriefTool(st *store.Store, ps *prefs.Service) *BriefTool {
	return &BriefTool{store: st, prefs: ps}
}

func (t *BriefTool) Name() string { return "scheduler_tool" }

func (t *BriefTool) Description() string {
	return "Generates the user's daily brief"
}

func (t *BriefTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	if action != "daily_brief" {
		return nil, fmt.Errorf("%w: scheduler_tool has no action '%s'", tool.ErrUnknownAction, action)
	}

	tasks, err := t.store.ListOpenTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	pendingApprovals, err := t.store.ListApprovals(ctx, userID, store.ApprovalPending)
	if err != nil {
		return nil, err
	}
	pendingProposals, err := t.store.ListProposals(ctx, userID, store.ProposalPending)
	if err != nil {
		return nil, err
	}

	format := "detailed"
	if t.prefs != nil {
		if v, err := t.prefs.Get(ctx, userID, "brief_format"); err == nil {
			format = v
		}
	}

	brief := render(tasks, len(pendingApprovals), len(pendingProposals), format)
	return tool.Ok(map[string]any{
		"open_tasks":        len(tasks),
		"pending_approvals": len(pendingApprovals),
		"pending_proposals": len(pendingProposals),
		"message":           brief,
	}), nil
}

func render(tasks []store.Task, approvals, proposals int, format string) string {
	var b strings.Builder
	b.WriteString("Daily brief\n")

	switch {
	case len(tasks) == 0:
		b.WriteString("No open tasks. Clean slate.")
	case format == "compact":
		fmt.Fprintf(&b, "%d open task(s), top: %s", len(tasks), tasks[0].Title)
	default:
		fmt.Fprintf(&b, "%d open task(s):", len(tasks))
		for _, task := range tasks {
			fmt.Fprintf(&b, "\n#%d %s", task.ID, task.Title)
		}
	}

	if approvals > 0 {
		fmt.Fprintf(&b, "\n%d approval(s) waiting for a decision.", approvals)
	}
	if proposals > 0 {
		fmt.Fprintf(&b, "\n%d improvement proposal(s) pending review.", proposals)
	}
	return b.String()
}
