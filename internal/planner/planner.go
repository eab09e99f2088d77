// Package planner maps a resolved intent onto an ordered list of tool steps.
// The mapping is a pure table: no I/O, no side effects.
package planner

import (
	"github.com/harunnryd/kaizen/internal/intent"
)

type Step struct {
	Tool   string         `json:"tool"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Plan is an ordered sequence of steps. An empty plan carries a fallback
// marker and the original text for diagnostics.
type Plan struct {
	Steps        []Step `json:"steps"`
	Fallback     string `json:"fallback,omitempty"`
	OriginalText string `json:"original_text,omitempty"`
}

const FallbackUnknownIntent = "unknown_intent"

// Make generates the execution plan for a classified intent. Every known
// intent maps to exactly one canonical step.
func Make(parsed intent.ParsedIntent) Plan {
	params := parsed.Params
	if params == nil {
		params = map[string]any{}
	}

	switch parsed.Intent {
	case intent.AddTask:
		return single("task_tool", "create", map[string]any{"title": params["title"]})
	case intent.ListTasks:
		return single("task_tool", "list", map[string]any{})
	case intent.DoneTask:
		return single("task_tool", "close", map[string]any{"task_id": params["task_id"]})
	case intent.DeleteTask:
		return single("task_tool", "delete", map[string]any{"task_id": params["task_id"]})
	case intent.DailyBrief:
		return single("scheduler_tool", "daily_brief", map[string]any{})
	case intent.Approve:
		return single("approval_tool", "approve", map[string]any{"approval_id": params["approval_id"]})
	case intent.ListApprovals:
		return single("approval_tool", "list", map[string]any{})
	case intent.MyPrefs:
		return single("preference_tool", "get", map[string]any{})
	case intent.SetPref:
		return single("preference_tool", "set", map[string]any{"key": params["key"], "value": params["value"]})
	case intent.ListProposals:
		return single("proposal_tool", "list", map[string]any{})
	case intent.ApproveProposal:
		return single("proposal_tool", "approve", map[string]any{"proposal_id": params["proposal_id"]})
	case intent.RejectProposal:
		return single("proposal_tool", "reject", map[string]any{"proposal_id": params["proposal_id"]})
	case intent.RollbackProposal:
		return single("proposal_tool", "rollback", map[string]any{"proposal_id": params["proposal_id"]})
	case intent.RunCommand:
		return single("shell_tool", "run", map[string]any{"command": params["command"]})
	default:
		text, _ := params["text"].(string)
		return Plan{Fallback: FallbackUnknownIntent, OriginalText: text}
	}
}

func single(tool, action string, params map[string]any) Plan {
	return Plan{Steps: []Step{{Tool: tool, Action: action, Params: params}}}
}
