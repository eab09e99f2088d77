// Package prefs stores per-user display and schedule preferences on top of
// the memories table. Unset keys fall back to defaults.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/store"
)

const keyPrefix = "pref:"

var defaults = map[string]string{
	"brief_format":     "detailed",
	"brief_time":       "07:30",
	"timezone":         "UTC",
	"priority_display": "emoji",
	"due_date_display": "relative",
}

var reBriefTime = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Get returns the stored value or the default for a known key.
func (s *Service) Get(ctx context.Context, userID, key string) (string, error) {
	def, known := defaults[key]
	if !known {
		return "", errors.InvalidInput(fmt.Sprintf("unknown preference '%s'", key))
	}
	raw, err := s.store.GetMemory(ctx, userID, keyPrefix+key)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return def, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return def, nil
	}
	return value, nil
}

// Set validates and stores a preference value.
func (s *Service) Set(ctx context.Context, userID, key, value string) error {
	if _, known := defaults[key]; !known {
		return errors.InvalidInput(fmt.Sprintf("unknown preference '%s'", key))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.InvalidInput("preference value must not be empty")
	}
	if key == "brief_time" && !reBriefTime.MatchString(value) {
		return errors.InvalidInput(fmt.Sprintf("invalid brief time '%s', expected HH:MM", value))
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.store.SetMemory(ctx, userID, keyPrefix+key, raw)
}

// All returns the effective preference map, defaults merged with overrides.
func (s *Service) All(ctx context.Context, userID string) (map[string]string, error) {
	out := make(map[string]string, len(defaults))
	for key := range defaults {
		val, err := s.Get(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

// Keys lists the known preference keys in stable order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
