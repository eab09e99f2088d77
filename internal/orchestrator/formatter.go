package orchestrator

import (
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/planner"
	"github.com/harunnryd/kaizen/internal/verifier"
)

// FormatReply renders the plain-text reply for one run. Tools put a
// human-readable "message" into their result; the formatter stitches those
// together and layers approval prompts and verifier findings on top.
func FormatReply(parsed intent.ParsedIntent, result *executor.Result, report verifier.Report) string {
	if result.Fallback == planner.FallbackUnknownIntent {
		return unknownReply(result.OriginalText)
	}

	var lines []string
	for _, step := range result.Steps {
		if step.Err != "" {
			continue
		}
		if msg, ok := step.Result["message"].(string); ok && msg != "" {
			lines = append(lines, msg)
		}
	}

	if result.NeedsApproval {
		for _, p := range result.PendingApprovals {
			lines = append(lines, fmt.Sprintf("Approval required: %s", p.Description))
			lines = append(lines, fmt.Sprintf("Reply 'approve %s' to proceed.", p.ApprovalID))
		}
		return strings.Join(lines, "\n")
	}

	if !report.OK {
		lines = append(lines, "That didn't fully work:")
		for _, issue := range report.Issues {
			lines = append(lines, "- "+issue)
		}
		return strings.Join(lines, "\n")
	}

	if len(lines) == 0 {
		return "Done."
	}
	return strings.Join(lines, "\n")
}

func unknownReply(text string) string {
	reply := "I didn't understand that."
	if t := strings.TrimSpace(text); t != "" {
		reply = fmt.Sprintf("I didn't understand %q.", t)
	}
	return reply + " Try 'add task <title>', 'list tasks', 'daily', or 'my prefs'."
}
