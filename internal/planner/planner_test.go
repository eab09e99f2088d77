package planner

import (
	"testing"

	"github.com/harunnryd/kaizen/internal/intent"
)

func TestMakeMapsEveryKnownIntent(t *testing.T) {
	cases := []struct {
		in     intent.Intent
		params map[string]any
		tool   string
		action string
	}{
		{intent.AddTask, map[string]any{"title": "x"}, "task_tool", "create"},
		{intent.ListTasks, nil, "task_tool", "list"},
		{intent.DoneTask, map[string]any{"task_id": int64(3)}, "task_tool", "close"},
		{intent.DeleteTask, map[string]any{"task_id": int64(3)}, "task_tool", "delete"},
		{intent.DailyBrief, nil, "scheduler_tool", "daily_brief"},
		{intent.Approve, map[string]any{"approval_id": "A"}, "approval_tool", "approve"},
		{intent.ListApprovals, nil, "approval_tool", "list"},
		{intent.MyPrefs, nil, "preference_tool", "get"},
		{intent.SetPref, map[string]any{"key": "k", "value": "v"}, "preference_tool", "set"},
		{intent.ListProposals, nil, "proposal_tool", "list"},
		{intent.ApproveProposal, map[string]any{"proposal_id": "P"}, "proposal_tool", "approve"},
		{intent.RejectProposal, map[string]any{"proposal_id": "P"}, "proposal_tool", "reject"},
		{intent.RollbackProposal, map[string]any{"proposal_id": "P"}, "proposal_tool", "rollback"},
		{intent.RunCommand, map[string]any{"command": "date"}, "shell_tool", "run"},
	}

	for _, tc := range cases {
		plan := Make(intent.ParsedIntent{Intent: tc.in, Params: tc.params})
		if len(plan.Steps) != 1 {
			t.Fatalf("%s: got %d steps, want 1", tc.in, len(plan.Steps))
		}
		step := plan.Steps[0]
		if step.Tool != tc.tool || step.Action != tc.action {
			t.Errorf("%s: step = %s.%s, want %s.%s", tc.in, step.Tool, step.Action, tc.tool, tc.action)
		}
	}
}

func TestMakeUnknownCarriesFallback(t *testing.T) {
	plan := Make(intent.ParsedIntent{
		Intent: intent.Unknown,
		Params: map[string]any{"text": "water my plants"},
	})
	if len(plan.Steps) != 0 {
		t.Fatalf("unknown intent must produce no steps, got %d", len(plan.Steps))
	}
	if plan.Fallback != FallbackUnknownIntent {
		t.Fatalf("fallback = %q", plan.Fallback)
	}
	if plan.OriginalText != "water my plants" {
		t.Fatalf("original text = %q", plan.OriginalText)
	}
}
