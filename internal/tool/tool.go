// Package tool defines the uniform capability interface every pluggable tool
// implements, and the registry the executor dispatches through. Tools are
// registered explicitly at startup; there is no discovery.
package tool

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrUnknownAction = errors.New("unknown action")
)

// Result is the action-specific payload a tool returns. Tools signal a domain
// failure with the "error" field while still returning normally; a Go error is
// reserved for invocation failures (timeout, panic-equivalent conditions).
type Result map[string]any

func Ok(fields map[string]any) Result {
	r := Result{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

func Fail(message string) Result {
	return Result{"success": false, "error": message}
}

func (r Result) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}

func (r Result) Err() string {
	msg, _ := r["error"].(string)
	return msg
}

// Tool represents an executable capability.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, action string, params map[string]any, userID string) (Result, error)
}

// Registry holds all available tools.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	name := NormalizeToolName(t.Name())
	if name == "" {
		panic("tool: empty tool name")
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[NormalizeToolName(name)]
	return t, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NormalizeToolName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
