// Package executor runs a plan against the tool registry, enforcing the step
// limit, the per-step timeout, and the approval gate. A step failure never
// aborts the remaining plan; it becomes a structured per-step error.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/guardrails"
	"github.com/harunnryd/kaizen/internal/logger"
	"github.com/harunnryd/kaizen/internal/planner"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
)

// StepOutcome is one entry in the ordered result list: either a tool payload
// or an error string, never both.
type StepOutcome struct {
	Tool   string      `json:"tool"`
	Action string      `json:"action,omitempty"`
	Result tool.Result `json:"result,omitempty"`
	Err    string      `json:"error,omitempty"`
}

type PendingApproval struct {
	ApprovalID  string `json:"approval_id"`
	Tool        string `json:"tool"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type Result struct {
	Success          bool              `json:"success"`
	Error            string            `json:"error,omitempty"`
	Steps            []StepOutcome     `json:"results"`
	PendingApprovals []PendingApproval `json:"pending_approvals,omitempty"`
	NeedsApproval    bool              `json:"needs_approval"`
	Fallback         string            `json:"fallback,omitempty"`
	OriginalText     string            `json:"original_text,omitempty"`
}

// ApprovalPayload is the stored shape of a deferred high-risk step.
type ApprovalPayload struct {
	Tool        string         `json:"tool"`
	Action      string         `json:"action"`
	Params      map[string]any `json:"params"`
	Description string         `json:"description"`
}

type Executor struct {
	registry    *tool.Registry
	guards      *guardrails.Table
	store       *store.Store
	maxSteps    int
	stepTimeout time.Duration
}

func New(registry *tool.Registry, guards *guardrails.Table, st *store.Store, maxSteps int, stepTimeout time.Duration) *Executor {
	if maxSteps <= 0 {
		maxSteps = 6
	}
	if stepTimeout <= 0 {
		stepTimeout = 30 * time.Second
	}
	return &Executor{
		registry:    registry,
		guards:      guards,
		store:       st,
		maxSteps:    maxSteps,
		stepTimeout: stepTimeout,
	}
}

// Execute runs the plan for a user. With bypass set, the approval gate is
// skipped; this is how a previously approved payload (and any nested
// follow-up steps a tool issues) resumes without re-triggering approval.
//
// Policy: one ApprovalRequest is created per risky step, and execution
// continues through the remaining steps. success is true iff there were zero
// step errors and zero pending approvals.
func (e *Executor) Execute(ctx context.Context, plan planner.Plan, userID string, bypass bool) (*Result, error) {
	steps := plan.Steps
	if len(steps) > e.maxSteps {
		slog.Warn("Plan truncated to max steps",
			"requested", len(steps), "max", e.maxSteps, "trace_id", logger.GetTraceID(ctx))
		steps = steps[:e.maxSteps]
	}

	if len(steps) == 0 {
		return &Result{
			Success:      false,
			Error:        "no_steps",
			Fallback:     plan.Fallback,
			OriginalText: plan.OriginalText,
		}, nil
	}

	res := &Result{}
	for _, step := range steps {
		if !bypass && e.guards.IsHighRisk(step.Tool, step.Action) {
			pending, err := e.deferStep(ctx, step, userID)
			if err != nil {
				return nil, kzErrors.Wrap(err, "failed to persist approval")
			}
			res.PendingApprovals = append(res.PendingApprovals, *pending)
			continue
		}
		res.Steps = append(res.Steps, e.runStep(ctx, step, userID))
	}

	res.NeedsApproval = len(res.PendingApprovals) > 0
	res.Success = !res.NeedsApproval && !hasStepError(res.Steps)
	return res, nil
}

// ExecutePayload runs a single stored approval payload with the gate
// bypassed. Used by the approval state machine on an APPROVED decision.
func (e *Executor) ExecutePayload(ctx context.Context, payload ApprovalPayload, userID string) (*Result, error) {
	plan := planner.Plan{Steps: []planner.Step{{
		Tool:   payload.Tool,
		Action: payload.Action,
		Params: payload.Params,
	}}}
	return e.Execute(ctx, plan, userID, true)
}

func (e *Executor) deferStep(ctx context.Context, step planner.Step, userID string) (*PendingApproval, error) {
	description := e.guards.Describe(step.Tool, step.Action)
	payload, err := json.Marshal(ApprovalPayload{
		Tool:        step.Tool,
		Action:      step.Action,
		Params:      step.Params,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	actionType := fmt.Sprintf("%s.%s", step.Tool, step.Action)
	approval, err := e.store.CreateApproval(ctx, userID, actionType, payload)
	if err != nil {
		return nil, err
	}

	slog.Info("Approval required",
		"approval_id", approval.ID, "tool", step.Tool, "action", step.Action,
		"trace_id", logger.GetTraceID(ctx))

	return &PendingApproval{
		ApprovalID:  approval.ID,
		Tool:        step.Tool,
		Action:      step.Action,
		Description: description,
	}, nil
}

func (e *Executor) runStep(ctx context.Context, step planner.Step, userID string) StepOutcome {
	t, ok := e.registry.Get(step.Tool)
	if !ok {
		return StepOutcome{Tool: step.Tool, Action: step.Action, Err: fmt.Sprintf("Tool '%s' not found", step.Tool)}
	}

	// The deadline is passed down so the tool can actively cancel the
	// underlying work (kill a subprocess, abort an HTTP call), not merely
	// stop waiting for it.
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	start := time.Now()
	result, err := t.Execute(stepCtx, step.Action, step.Params, userID)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Tool execution failed",
			"tool", step.Tool, "action", step.Action, "error", err,
			"duration", duration, "trace_id", logger.GetTraceID(ctx))
		return StepOutcome{Tool: step.Tool, Action: step.Action, Err: err.Error()}
	}

	slog.Info("Tool execution success",
		"tool", step.Tool, "action", step.Action,
		"duration", duration, "trace_id", logger.GetTraceID(ctx))
	return StepOutcome{Tool: step.Tool, Action: step.Action, Result: result}
}

func hasStepError(steps []StepOutcome) bool {
	for _, s := range steps {
		if s.Err != "" {
			return true
		}
	}
	return false
}
