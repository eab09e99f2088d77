package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/prefs"
	"github.com/harunnryd/kaizen/internal/tool"
)

type PreferenceTool struct {
	prefs *prefs.Service
}

func NewPreferenceTool(ps *prefs.Service) *PreferenceTool {
	return &PreferenceTool{prefs: ps}
}

func (t *PreferenceTool) Name() string { return "preference_tool" }

func (t *PreferenceTool) Description() string {
	return "Reads and updates the user's preferences"
}

func (t *PreferenceTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	switch action {
	case "get":
		return t.get(ctx, userID)
	case "set":
		return t.set(ctx, params, userID)
	default:
		return nil, fmt.Errorf("%w: preference_tool has no action '%s'", tool.ErrUnknownAction, action)
	}
}

func (t *PreferenceTool) get(ctx context.Context, userID string) (tool.Result, error) {
	all, err := t.prefs.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Your preferences:")
	for _, key := range prefs.Keys() {
		fmt.Fprintf(&b, "\n%s: %s", key, all[key])
	}
	return tool.Ok(map[string]any{
		"preferences": all,
		"message":     b.String(),
	}), nil
}

func (t *PreferenceTool) set(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	key, err := stringParam(params, "key")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}
	value, err := stringParam(params, "value")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	if err := t.prefs.Set(ctx, userID, key, value); err != nil {
		if errors.IsCategory(err, errors.ErrInvalidInput) {
			return tool.Fail(err.Error()), nil
		}
		return nil, err
	}
	return tool.Ok(map[string]any{
		"key":     key,
		"value":   value,
		"message": fmt.Sprintf("Set %s to %s.", key, value),
	}), nil
}
