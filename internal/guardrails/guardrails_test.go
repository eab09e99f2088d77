package guardrails

import "testing"

func TestIsHighRisk(t *testing.T) {
	table := NewTable(nil)

	risky := [][2]string{
		{"task_tool", "delete"},
		{"shell_tool", "run"},
		{"file_tool", "write"},
		{"email_tool", "send"},
	}
	for _, pair := range risky {
		if !table.IsHighRisk(pair[0], pair[1]) {
			t.Errorf("%s.%s should be high risk", pair[0], pair[1])
		}
	}

	safe := [][2]string{
		{"task_tool", "create"},
		{"task_tool", "list"},
		{"preference_tool", "set"},
	}
	for _, pair := range safe {
		if table.IsHighRisk(pair[0], pair[1]) {
			t.Errorf("%s.%s should not be high risk", pair[0], pair[1])
		}
	}
}

// Pins the fail-open policy: pairs absent from the table execute unchecked.
// Changing this to fail-closed is a deliberate decision, not a refactor.
func TestIsHighRiskFailOpen(t *testing.T) {
	table := NewTable(nil)

	if table.IsHighRisk("new_tool", "destroy_everything") {
		t.Fatal("unlisted tool must classify as not high risk")
	}
	if table.IsHighRisk("task_tool", "unheard_of_action") {
		t.Fatal("unlisted action must classify as not high risk")
	}
}

func TestExtraEntriesMergeOverBuiltins(t *testing.T) {
	table := NewTable(map[string][]string{
		"task_tool": {"archive"},
		"new_tool":  {"wipe"},
	})

	if !table.IsHighRisk("task_tool", "archive") {
		t.Fatal("extra action on existing tool should be high risk")
	}
	if !table.IsHighRisk("task_tool", "delete") {
		t.Fatal("built-in entries must survive the merge")
	}
	if !table.IsHighRisk("new_tool", "wipe") {
		t.Fatal("extra tool should be high risk")
	}
}

func TestDescribe(t *testing.T) {
	table := NewTable(nil)

	if got := table.Describe("shell_tool", "run"); got != "Execute a terminal command" {
		t.Fatalf("Describe = %q", got)
	}
	if got := table.Describe("new_tool", "wipe"); got != "Execute wipe on new_tool" {
		t.Fatalf("fallback Describe = %q", got)
	}
}
