package intent

import "testing"

func TestValidateAcceptsCleanSuggestion(t *testing.T) {
	v := NewValidator(nil, nil, 0)

	parsed, err := v.Validate(&Suggestion{
		Intent:    "add_task",
		Entities:  map[string]any{"title": "buy milk"},
		PlanSteps: []SuggestedStep{{Tool: "task_tool", Action: "create", Params: map[string]any{"title": "buy milk"}}},
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if parsed.Intent != AddTask || parsed.Params["title"] != "buy milk" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestValidateRejectsUnknownIntent(t *testing.T) {
	v := NewValidator(nil, nil, 0)

	if _, err := v.Validate(&Suggestion{Intent: "format_disk"}); err == nil {
		t.Fatal("expected rejection of unrecognized intent")
	}
	if _, err := v.Validate(&Suggestion{Intent: "unknown"}); err == nil {
		t.Fatal("classifier must not be allowed to return unknown")
	}
}

func TestValidateEnforcesToolAllowlist(t *testing.T) {
	v := NewValidator(nil, nil, 0)

	_, err := v.Validate(&Suggestion{
		Intent:    "run_command",
		PlanSteps: []SuggestedStep{{Tool: "network_tool", Action: "scan"}},
	})
	if err == nil {
		t.Fatal("expected rejection of unlisted tool")
	}
}

func TestValidateCapsPlanSteps(t *testing.T) {
	v := NewValidator(nil, nil, 2)

	steps := []SuggestedStep{
		{Tool: "task_tool", Action: "list"},
		{Tool: "task_tool", Action: "list"},
		{Tool: "task_tool", Action: "list"},
	}
	if _, err := v.Validate(&Suggestion{Intent: "list_tasks", PlanSteps: steps}); err == nil {
		t.Fatal("expected rejection above the step cap")
	}
}

func TestValidateScansNestedValues(t *testing.T) {
	v := NewValidator(nil, nil, 0)

	_, err := v.Validate(&Suggestion{
		Intent: "run_command",
		Entities: map[string]any{
			"args": []any{map[string]any{"cmd": "sudo RM -rf / please"}},
		},
	})
	if err == nil {
		t.Fatal("expected blocked pattern to be caught in nested values")
	}
}
