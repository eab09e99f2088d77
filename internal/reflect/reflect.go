// Package reflect turns a finished run into a short self-assessment and
// keeps a bounded per-user log of past reflections. Actionable suggestions
// feed the proposal engine.
package reflect

import (
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/verifier"
)

type Reflection struct {
	Intent     string   `json:"intent"`
	WhatWorked []string `json:"what_worked"`
	WhatFailed []string `json:"what_failed"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Keywords that mark a suggestion as actionable for the proposal engine.
var actionableWords = []string{"alias", "rule", "add", "consider", "similar", "pattern"}

// Generate builds the reflection for one run.
func Generate(parsed intent.ParsedIntent, result *executor.Result, report verifier.Report) Reflection {
	r := Reflection{Intent: string(parsed.Intent)}

	for _, step := range result.Steps {
		label := step.Tool
		if step.Action != "" {
			label = fmt.Sprintf("%s.%s", step.Tool, step.Action)
		}
		if step.Err != "" {
			r.WhatFailed = append(r.WhatFailed, fmt.Sprintf("%s: %s", label, step.Err))
		} else {
			r.WhatWorked = append(r.WhatWorked, label)
		}
	}
	if result.NeedsApproval {
		r.WhatFailed = append(r.WhatFailed, "Action required approval")
	}
	for _, issue := range report.Issues {
		r.WhatFailed = append(r.WhatFailed, issue)
	}

	r.Suggestion = suggest(parsed, result, report)
	return r
}

func suggest(parsed intent.ParsedIntent, result *executor.Result, report verifier.Report) string {
	switch {
	case parsed.Intent == intent.Unknown:
		text := strings.TrimSpace(result.OriginalText)
		if text == "" {
			return "Consider adding a rule for frequently unrecognized commands"
		}
		return fmt.Sprintf("Consider adding an alias rule for '%s' if this command recurs", text)
	case result.NeedsApproval:
		return "User should review and approve pending actions"
	case !report.OK:
		return "Review the failed steps before retrying"
	default:
		return ""
	}
}

// Actionable reports whether the suggestion should spawn a proposal.
func (r Reflection) Actionable() bool {
	s := strings.ToLower(r.Suggestion)
	if s == "" {
		return false
	}
	for _, w := range actionableWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
