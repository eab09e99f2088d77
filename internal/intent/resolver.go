package intent

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	reAddTask       = regexp.MustCompile(`^add\s+task\s+(.+)$`)
	reDoneTask      = regexp.MustCompile(`^(done|close|complete)\s+(\d+)$`)
	reDeleteTask    = regexp.MustCompile(`^delete\s+task\s+(\d+)$`)
	reApprove       = regexp.MustCompile(`^approve\s+(\S+)$`)
	reSetBriefTime  = regexp.MustCompile(`^set\s+brief\s+time\s+(\d{1,2}:\d{2})$`)
	reSetPref       = regexp.MustCompile(`^set\s+pref\s+(\S+)\s+(.+)$`)
	reProposalVerb  = regexp.MustCompile(`^(approve|reject|rollback)\s+proposal\s+(\S+)$`)
	reRunCommand    = regexp.MustCompile(`^(?:run|shell)\s+(.+)$`)
	reAddTaskOrig   = regexp.MustCompile(`(?i)^add\s+task\s+(.+)$`)
	reRunCommandOrig = regexp.MustCompile(`(?i)^(?:run|shell)\s+(.+)$`)
	reListTasks     = regexp.MustCompile(`^(list\s+tasks?|tasks|show\s+tasks)$`)
	reDaily         = regexp.MustCompile(`^(daily\s+brief|brief|daily|morning\s+brief)$`)
	rePrefs         = regexp.MustCompile(`^(my\s+prefs|my\s+preferences|prefs|preferences)$`)
	reProposals     = regexp.MustCompile(`^(proposals|list\s+proposals)$`)
	reApprovalsList = regexp.MustCompile(`^(approvals|list\s+approvals|pending\s+approvals)$`)
)

// Classifier is the generative fallback collaborator. Implementations return
// a structured suggestion; the resolver decides whether to trust it.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Suggestion, error)
}

type Suggestion struct {
	Intent     string          `json:"intent"`
	Entities   map[string]any  `json:"entities"`
	PlanSteps  []SuggestedStep `json:"plan_steps"`
	Confidence float64         `json:"confidence"`
}

type SuggestedStep struct {
	Tool   string         `json:"tool"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

type Resolver struct {
	classifier Classifier
	cache      *Cache
	validator  *Validator
}

// NewResolver builds a resolver. classifier may be nil, in which case
// unmatched text resolves to Unknown immediately.
func NewResolver(classifier Classifier, cacheSize int, validator *Validator) *Resolver {
	if validator == nil {
		validator = NewValidator(nil, nil, 0)
	}
	return &Resolver{
		classifier: classifier,
		cache:      NewCache(cacheSize),
		validator:  validator,
	}
}

// Resolve is deterministic and total over the grammar: it never fails, and
// for grammar-matching text it never consults the classifier.
func (r *Resolver) Resolve(ctx context.Context, text string) ParsedIntent {
	if parsed, ok := parseGrammar(text); ok {
		return parsed
	}

	unknown := ParsedIntent{Intent: Unknown, Params: map[string]any{"text": strings.TrimSpace(text)}}
	if r.classifier == nil {
		return unknown
	}

	normalized := Normalize(text)
	if cached, ok := r.cache.Get(normalized); ok {
		return cached
	}

	suggestion, err := r.classifier.Classify(ctx, text)
	if err != nil {
		slog.Warn("Classifier call failed", "error", err)
		return unknown
	}

	parsed, err := r.validator.Validate(suggestion)
	if err != nil {
		// Validation failures degrade silently to Unknown; the original
		// text is preserved for diagnostics.
		slog.Warn("Classifier suggestion rejected", "error", err)
		return unknown
	}

	r.cache.Put(normalized, parsed)
	return parsed
}

// Normalize lowercases, trims, and collapses whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

func parseGrammar(text string) (ParsedIntent, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ParsedIntent{Intent: Unknown, Params: map[string]any{"text": ""}}, true
	}
	normalized := Normalize(text)

	if reAddTask.MatchString(normalized) {
		// Re-match against the raw text to preserve the title's casing.
		title := normalized[len("add task "):]
		if m := reAddTaskOrig.FindStringSubmatch(trimmed); m != nil {
			title = strings.TrimSpace(m[1])
		}
		return ParsedIntent{Intent: AddTask, Params: map[string]any{"title": title}}, true
	}

	if reListTasks.MatchString(normalized) {
		return ParsedIntent{Intent: ListTasks, Params: map[string]any{}}, true
	}

	if m := reDoneTask.FindStringSubmatch(normalized); m != nil {
		id, _ := strconv.ParseInt(m[2], 10, 64)
		return ParsedIntent{Intent: DoneTask, Params: map[string]any{"task_id": id}}, true
	}

	if m := reDeleteTask.FindStringSubmatch(normalized); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		return ParsedIntent{Intent: DeleteTask, Params: map[string]any{"task_id": id}}, true
	}

	if reDaily.MatchString(normalized) {
		return ParsedIntent{Intent: DailyBrief, Params: map[string]any{}}, true
	}

	if m := reProposalVerb.FindStringSubmatch(normalized); m != nil {
		// IDs are ULIDs stored uppercase; normalization lowercased them.
		params := map[string]any{"proposal_id": strings.ToUpper(m[2])}
		switch m[1] {
		case "approve":
			return ParsedIntent{Intent: ApproveProposal, Params: params}, true
		case "reject":
			return ParsedIntent{Intent: RejectProposal, Params: params}, true
		default:
			return ParsedIntent{Intent: RollbackProposal, Params: params}, true
		}
	}

	if m := reApprove.FindStringSubmatch(normalized); m != nil {
		return ParsedIntent{Intent: Approve, Params: map[string]any{"approval_id": strings.ToUpper(m[1])}}, true
	}

	if reApprovalsList.MatchString(normalized) {
		return ParsedIntent{Intent: ListApprovals, Params: map[string]any{}}, true
	}

	if rePrefs.MatchString(normalized) {
		return ParsedIntent{Intent: MyPrefs, Params: map[string]any{}}, true
	}

	if m := reSetBriefTime.FindStringSubmatch(normalized); m != nil {
		return ParsedIntent{Intent: SetPref, Params: map[string]any{"key": "brief_time", "value": m[1]}}, true
	}

	if m := reSetPref.FindStringSubmatch(normalized); m != nil {
		return ParsedIntent{Intent: SetPref, Params: map[string]any{"key": m[1], "value": m[2]}}, true
	}

	if reProposals.MatchString(normalized) {
		return ParsedIntent{Intent: ListProposals, Params: map[string]any{}}, true
	}

	if reRunCommand.MatchString(normalized) {
		// Re-match against the raw text to preserve the command's casing.
		command := ""
		if m := reRunCommandOrig.FindStringSubmatch(trimmed); m != nil {
			command = strings.TrimSpace(m[1])
		}
		return ParsedIntent{Intent: RunCommand, Params: map[string]any{"command": command}}, true
	}

	return ParsedIntent{}, false
}
