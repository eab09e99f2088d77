// Package builtin holds the first-party tools registered at startup: tasks,
// briefs, preferences, approvals, proposals, and the shell runner.
package builtin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func stringParam(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required param '%s'", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("param '%s' must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("param '%s' must not be empty", key)
	}
	return s, nil
}

// int64Param accepts the shapes an id arrives in: native ints from the
// grammar, float64 or json.Number after a JSON round trip, digit strings
// from the classifier.
func int64Param(params map[string]any, key string) (int64, error) {
	raw, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param '%s'", key)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("param '%s' is not a valid id", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("param '%s' has unsupported type %T", key, raw)
	}
}
