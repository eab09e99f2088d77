package intent

import (
	"fmt"
	"strings"
)

// DefaultAllowedTools is the fixed allowlist of tools a generative suggestion
// may reference.
var DefaultAllowedTools = []string{
	"task_tool", "scheduler_tool", "approval_tool",
	"preference_tool", "proposal_tool", "shell_tool",
}

// DefaultBlockedPatterns are substrings that disqualify a suggestion outright,
// wherever they appear in entities or step params.
var DefaultBlockedPatterns = []string{
	"rm -rf /", "rm -rf ~", "sudo rm", "mkfs", "dd if=",
	":(){ :|:", "> /dev/sda", "chmod -r 777 /",
	"drop table", "delete from", "<script>", "javascript:",
}

// Validator screens generative suggestions before they are trusted.
type Validator struct {
	allowedTools    map[string]struct{}
	blockedPatterns []string
	maxPlanSteps    int
}

func NewValidator(allowedTools []string, blockedPatterns []string, maxPlanSteps int) *Validator {
	if allowedTools == nil {
		allowedTools = DefaultAllowedTools
	}
	if blockedPatterns == nil {
		blockedPatterns = DefaultBlockedPatterns
	}
	if maxPlanSteps <= 0 {
		maxPlanSteps = 5
	}

	allowed := make(map[string]struct{}, len(allowedTools))
	for _, t := range allowedTools {
		allowed[t] = struct{}{}
	}
	return &Validator{
		allowedTools:    allowed,
		blockedPatterns: blockedPatterns,
		maxPlanSteps:    maxPlanSteps,
	}
}

// Validate accepts a suggestion only when its intent is in the known set,
// every referenced tool is allowlisted, the step count is within the cap, and
// no string value anywhere in entities or params contains a blocked pattern.
func (v *Validator) Validate(s *Suggestion) (ParsedIntent, error) {
	if s == nil {
		return ParsedIntent{}, fmt.Errorf("nil suggestion")
	}

	resolved := Intent(s.Intent)
	if !IsKnown(resolved) {
		return ParsedIntent{}, fmt.Errorf("intent %q not recognized", s.Intent)
	}
	if resolved == Unknown {
		return ParsedIntent{}, fmt.Errorf("classifier returned unknown")
	}

	if len(s.PlanSteps) > v.maxPlanSteps {
		return ParsedIntent{}, fmt.Errorf("too many plan steps: %d > %d", len(s.PlanSteps), v.maxPlanSteps)
	}

	for _, step := range s.PlanSteps {
		if _, ok := v.allowedTools[step.Tool]; !ok {
			return ParsedIntent{}, fmt.Errorf("tool %q not allowed", step.Tool)
		}
		if err := v.scanValue(step.Params); err != nil {
			return ParsedIntent{}, err
		}
	}

	if err := v.scanValue(s.Entities); err != nil {
		return ParsedIntent{}, err
	}

	params := s.Entities
	if params == nil {
		params = map[string]any{}
	}
	return ParsedIntent{Intent: resolved, Params: params}, nil
}

// scanValue walks a value recursively, including nested maps and lists, and
// rejects any string containing a blocked pattern.
func (v *Validator) scanValue(value any) error {
	switch val := value.(type) {
	case string:
		lower := strings.ToLower(val)
		for _, pattern := range v.blockedPatterns {
			if strings.Contains(lower, pattern) {
				return fmt.Errorf("blocked pattern %q", pattern)
			}
		}
	case map[string]any:
		for _, inner := range val {
			if err := v.scanValue(inner); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range val {
			if err := v.scanValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}
