// Package guardrails is the static risk policy: which (tool, action) pairs
// require a human approval before execution. Classification is a pure function
// of the pair; parameter values are deliberately not inspected.
package guardrails

import (
	"fmt"

	"github.com/harunnryd/kaizen/internal/tool"
)

// highRiskActions maps tool name -> set of action names requiring approval.
// Pairs absent from this table are NOT high-risk: the policy fails open, and
// newly registered tools execute unchecked until added here.
var highRiskActions = map[string][]string{
	"task_tool":     {"delete", "delete_all", "purge"},
	"file_tool":     {"delete", "move", "overwrite", "write"},
	"email_tool":    {"send", "send_bulk"},
	"external_tool": {"webhook", "http_request"},
	"shell_tool":    {"run"}, // every shell command needs approval
	"app_tool":      {"open", "close", "focus"},
	"ui_tool":       {"click", "type", "hotkey", "search", "press"},
}

var riskDescriptions = map[string]string{
	"task_tool.delete":     "Permanently delete a task",
	"task_tool.delete_all": "Delete all tasks",
	"task_tool.purge":      "Purge completed tasks",
	"file_tool.delete":     "Delete a file or directory",
	"file_tool.move":       "Move a file or directory",
	"file_tool.overwrite":  "Overwrite an existing file",
	"file_tool.write":      "Write to a file",
	"shell_tool.run":       "Execute a terminal command",
	"app_tool.open":        "Open an application",
	"app_tool.close":       "Close an application",
	"app_tool.focus":       "Focus an application window",
}

// Table is the risk classifier consulted by the executor per step.
type Table struct {
	actions map[string]map[string]struct{}
}

// NewTable builds the classifier from the built-in policy merged with extra
// config-supplied entries.
func NewTable(extra map[string][]string) *Table {
	t := &Table{actions: make(map[string]map[string]struct{})}
	for toolName, actions := range highRiskActions {
		t.add(toolName, actions)
	}
	for toolName, actions := range extra {
		t.add(toolName, actions)
	}
	return t
}

func (t *Table) add(toolName string, actions []string) {
	name := tool.NormalizeToolName(toolName)
	set, ok := t.actions[name]
	if !ok {
		set = make(map[string]struct{})
		t.actions[name] = set
	}
	for _, a := range actions {
		set[a] = struct{}{}
	}
}

// IsHighRisk reports whether the (tool, action) pair requires approval.
func (t *Table) IsHighRisk(toolName, action string) bool {
	set, ok := t.actions[tool.NormalizeToolName(toolName)]
	if !ok {
		return false
	}
	_, risky := set[action]
	return risky
}

// Describe returns a human-readable description of the risk.
func (t *Table) Describe(toolName, action string) string {
	key := fmt.Sprintf("%s.%s", tool.NormalizeToolName(toolName), action)
	if desc, ok := riskDescriptions[key]; ok {
		return desc
	}
	return fmt.Sprintf("Execute %s on %s", action, toolName)
}
