package verifier

import (
	"testing"

	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/planner"
	"github.com/harunnryd/kaizen/internal/tool"
)

func TestVerifyCleanRun(t *testing.T) {
	report := Verify(
		intent.ParsedIntent{Intent: intent.ListTasks},
		&executor.Result{Success: true, Steps: []executor.StepOutcome{
			{Tool: "task_tool", Action: "list", Result: tool.Ok(nil)},
		}},
	)
	if !report.OK || len(report.Issues) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestVerifyUnknownCommand(t *testing.T) {
	report := Verify(
		intent.ParsedIntent{Intent: intent.Unknown},
		&executor.Result{Fallback: planner.FallbackUnknownIntent, OriginalText: "hm"},
	)
	if report.OK || len(report.Issues) != 1 || report.Issues[0] != "Unknown command" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestVerifyAccumulatesAllIssues(t *testing.T) {
	report := Verify(
		intent.ParsedIntent{Intent: intent.ListTasks},
		&executor.Result{Success: false, Steps: []executor.StepOutcome{
			{Tool: "a_tool", Action: "x", Err: "boom"},
			{Tool: "b_tool", Action: "y", Err: "bang"},
		}},
	)
	if report.OK {
		t.Fatal("expected failing report")
	}
	// "Execution failed" plus one issue per failed step.
	if len(report.Issues) != 3 {
		t.Fatalf("issues = %v, want 3 entries", report.Issues)
	}
}

func TestVerifyAddTaskPostcondition(t *testing.T) {
	parsed := intent.ParsedIntent{Intent: intent.AddTask, Params: map[string]any{"title": "x"}}

	report := Verify(parsed, &executor.Result{Success: true, Steps: []executor.StepOutcome{
		{Tool: "task_tool", Action: "create", Result: tool.Ok(map[string]any{"task_id": int64(7)})},
	}})
	if !report.OK {
		t.Fatalf("task_id present, report should be clean: %+v", report)
	}

	report = Verify(parsed, &executor.Result{Success: true, Steps: []executor.StepOutcome{
		{Tool: "task_tool", Action: "create", Result: tool.Ok(nil)},
	}})
	if report.OK {
		t.Fatal("missing task_id must be flagged")
	}
}

func TestVerifyPendingApprovalIsNotOK(t *testing.T) {
	report := Verify(
		intent.ParsedIntent{Intent: intent.DeleteTask},
		&executor.Result{
			Success:       false,
			NeedsApproval: true,
			PendingApprovals: []executor.PendingApproval{
				{ApprovalID: "A1", Tool: "task_tool", Action: "delete"},
			},
		},
	)
	if report.OK {
		t.Fatal("the deferred work has not happened, the report must not be clean")
	}
	found := false
	for _, issue := range report.Issues {
		if issue == "Execution failed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("non-success result must be flagged: %+v", report.Issues)
	}
}
