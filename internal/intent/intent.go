// Package intent turns free-form user text into a classified intent with
// parameters. A fixed grammar is tried first; an optional generative
// classifier backs it up, gated by strict allowlist/denylist validation.
package intent

type Intent string

const (
	AddTask          Intent = "add_task"
	ListTasks        Intent = "list_tasks"
	DoneTask         Intent = "done_task"
	DeleteTask       Intent = "delete_task"
	DailyBrief       Intent = "daily_brief"
	Approve          Intent = "approve"
	ListApprovals    Intent = "list_approvals"
	MyPrefs          Intent = "my_prefs"
	SetPref          Intent = "set_pref"
	ListProposals    Intent = "list_proposals"
	ApproveProposal  Intent = "approve_proposal"
	RejectProposal   Intent = "reject_proposal"
	RollbackProposal Intent = "rollback_proposal"
	RunCommand       Intent = "run_command"
	Unknown          Intent = "unknown"
)

// known is the closed set a generative suggestion may resolve to.
var known = map[Intent]struct{}{
	AddTask:          {},
	ListTasks:        {},
	DoneTask:         {},
	DeleteTask:       {},
	DailyBrief:       {},
	Approve:          {},
	ListApprovals:    {},
	MyPrefs:          {},
	SetPref:          {},
	ListProposals:    {},
	ApproveProposal:  {},
	RejectProposal:   {},
	RollbackProposal: {},
	RunCommand:       {},
	Unknown:          {},
}

func IsKnown(i Intent) bool {
	_, ok := known[i]
	return ok
}

// ParsedIntent is the classification outcome for one message. Produced fresh
// per message and never persisted directly.
type ParsedIntent struct {
	Intent Intent         `json:"intent"`
	Params map[string]any `json:"params"`
}
