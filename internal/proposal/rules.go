package proposal

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/harunnryd/kaizen/internal/logger"
	"github.com/harunnryd/kaizen/internal/store"
)

// RuleAction is the stored payload of an active rule: the intent override it
// injects when its pattern matches.
type RuleAction struct {
	Intent string         `json:"intent"`
	Params map[string]any `json:"params,omitempty"`
}

const RuleTypeAlias = "alias"

// Rules matches incoming text against a user's active rules.
type Rules struct {
	store *store.Store
}

func NewRules(st *store.Store) *Rules {
	return &Rules{store: st}
}

// Match iterates active rules by descending priority and returns the action
// of the first one that matches, or nil when none do. Alias patterns are
// tried as exact match, then substring, then regex; a pattern that fails to
// compile as a regex simply loses its third chance.
func (r *Rules) Match(ctx context.Context, userID, text string) (*RuleAction, error) {
	rules, err := r.store.ActiveRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range rules {
		if rule.RuleType != RuleTypeAlias {
			continue
		}
		if !aliasMatches(rule.Pattern, normalized) {
			continue
		}

		var action RuleAction
		if err := json.Unmarshal(rule.Action, &action); err != nil {
			slog.Warn("Skipping rule with corrupt action",
				"rule_id", rule.ID, "error", err, "trace_id", logger.GetTraceID(ctx))
			continue
		}
		slog.Info("Rule matched",
			"rule_id", rule.ID, "intent", action.Intent, "trace_id", logger.GetTraceID(ctx))
		return &action, nil
	}
	return nil, nil
}

func aliasMatches(pattern, normalized string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	stripped := strings.TrimSuffix(strings.TrimPrefix(p, "^"), "$")

	if stripped == normalized {
		return true
	}
	if strings.Contains(normalized, stripped) {
		return true
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return false
	}
	return re.MatchString(normalized)
}
