// Package verifier checks an execution result against the resolved intent.
// It accumulates every issue it finds rather than stopping at the first.
package verifier

import (
	"fmt"

	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/planner"
)

type Report struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues,omitempty"`
}

// Verify inspects the result of one run. Any non-success result is flagged,
// including a run paused on pending approvals: the requested work has not
// happened yet, and the report must say so.
func Verify(parsed intent.ParsedIntent, result *executor.Result) Report {
	var issues []string

	if result.Fallback == planner.FallbackUnknownIntent {
		issues = append(issues, "Unknown command")
		return Report{OK: false, Issues: issues}
	}

	if !result.Success {
		issues = append(issues, "Execution failed")
	}

	for _, step := range result.Steps {
		if step.Err != "" {
			issues = append(issues, fmt.Sprintf("Step %s.%s error: %s", step.Tool, step.Action, step.Err))
		}
	}

	if parsed.Intent == intent.AddTask {
		issues = append(issues, checkTaskCreated(result)...)
	}

	return Report{OK: len(issues) == 0, Issues: issues}
}

// checkTaskCreated asserts the postcondition of add_task: some successful
// step reported the id of the created task.
func checkTaskCreated(result *executor.Result) []string {
	if result.NeedsApproval {
		return nil
	}
	for _, step := range result.Steps {
		if step.Err != "" {
			continue
		}
		if _, ok := step.Result["task_id"]; ok {
			return nil
		}
	}
	return []string{"Task creation not confirmed: no task_id in results"}
}
