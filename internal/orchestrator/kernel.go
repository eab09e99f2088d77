// Package orchestrator drives the full per-message pipeline: screen input,
// match rules, resolve intent, persist the run, plan, execute through the
// risk gate, verify, format the reply, and finally reflect and maybe propose.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/harunnryd/kaizen/internal/concurrency"
	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/logger"
	"github.com/harunnryd/kaizen/internal/planner"
	"github.com/harunnryd/kaizen/internal/proposal"
	"github.com/harunnryd/kaizen/internal/ratelimit"
	"github.com/harunnryd/kaizen/internal/reflect"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/verifier"
)

// Reply is the rendered outcome of one message.
type Reply struct {
	Text  string `json:"text"`
	RunID string `json:"run_id,omitempty"`
}

type Kernel struct {
	store         *store.Store
	rules         *proposal.Rules
	resolver      *intent.Resolver
	exec          *executor.Executor
	reflections   *reflect.Log
	proposals     *proposal.Engine
	locks         *concurrency.UserLockManager
	limiter       *ratelimit.Limiter
	maxInputChars int
}

type Options struct {
	Store         *store.Store
	Rules         *proposal.Rules
	Resolver      *intent.Resolver
	Executor      *executor.Executor
	Reflections   *reflect.Log
	Proposals     *proposal.Engine
	Limiter       *ratelimit.Limiter
	MaxInputChars int
}

func NewKernel(opts Options) *Kernel {
	maxChars := opts.MaxInputChars
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &Kernel{
		store:         opts.Store,
		rules:         opts.Rules,
		resolver:      opts.Resolver,
		exec:          opts.Executor,
		reflections:   opts.Reflections,
		proposals:     opts.Proposals,
		locks:         concurrency.NewUserLockManager(),
		limiter:       opts.Limiter,
		maxInputChars: maxChars,
	}
}

// HandleMessage runs the whole pipeline for one inbound message. Messages
// from the same user are serialized; a store failure while recording the run
// ledger is fatal for the message, not silently swallowed.
func (k *Kernel) HandleMessage(ctx context.Context, userID, text string) (*Reply, error) {
	ctx = logger.WithTraceID(logger.WithUserID(ctx, userID), ulid.Make().String())

	text, err := k.screen(ctx, text)
	if err != nil {
		return nil, err
	}

	if k.limiter != nil && !k.limiter.Allow(userID) {
		slog.Warn("Rate limit exceeded", "user_id", userID, "trace_id", logger.GetTraceID(ctx))
		return nil, errors.Wrap(errors.ErrRateLimited, "too many requests, slow down")
	}

	k.locks.Lock(userID)
	defer k.locks.Unlock(userID)

	parsed := k.classify(ctx, userID, text)

	runID, err := k.store.CreateRun(ctx, userID, text, string(parsed.Intent))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open run ledger entry")
	}

	plan := planner.Make(parsed)
	if plan.OriginalText == "" {
		plan.OriginalText = text
	}

	result, err := k.exec.Execute(ctx, plan, userID, false)
	if err != nil {
		k.closeRun(ctx, runID, store.RunFailed, plan, nil)
		return nil, err
	}

	report := verifier.Verify(parsed, result)

	status := store.RunCompleted
	if !report.OK {
		status = store.RunFailed
	}
	if err := k.closeRun(ctx, runID, status, plan, result); err != nil {
		return nil, errors.Wrap(err, "failed to close run ledger entry")
	}

	k.reflect(ctx, userID, runID, parsed, result, report)

	return &Reply{Text: FormatReply(parsed, result, report), RunID: runID}, nil
}

// screen enforces the inbound safety limits before anything touches the
// pipeline. Over-long input is truncated with a log line, not rejected.
func (k *Kernel) screen(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.InvalidInput("empty message")
	}
	if len(text) > k.maxInputChars {
		slog.Warn("Input truncated",
			"length", len(text), "max", k.maxInputChars, "trace_id", logger.GetTraceID(ctx))
		cut := k.maxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	lowered := strings.ToLower(text)
	for _, pattern := range intent.DefaultBlockedPatterns {
		if strings.Contains(lowered, pattern) {
			slog.Warn("Blocked input pattern",
				"pattern", pattern, "trace_id", logger.GetTraceID(ctx))
			return "", errors.InvalidInput("message contains a blocked pattern")
		}
	}
	return text, nil
}

// classify applies the rule short-circuit before the resolver. A matching
// active rule returns its stored action and the resolver is never consulted.
func (k *Kernel) classify(ctx context.Context, userID, text string) intent.ParsedIntent {
	if k.rules != nil {
		action, err := k.rules.Match(ctx, userID, text)
		if err != nil {
			slog.Warn("Rule matching failed, falling through to resolver",
				"error", err, "trace_id", logger.GetTraceID(ctx))
		} else if action != nil {
			return intent.ParsedIntent{Intent: intent.Intent(action.Intent), Params: action.Params}
		}
	}
	return k.resolver.Resolve(ctx, text)
}

func (k *Kernel) closeRun(ctx context.Context, runID string, status store.RunStatus, plan planner.Plan, result *executor.Result) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	var resultJSON []byte
	if result != nil {
		if resultJSON, err = json.Marshal(result); err != nil {
			return err
		}
	}
	return k.store.UpdateRun(ctx, runID, status, planJSON, resultJSON)
}

// reflect appends the run's reflection and, when the suggestion is
// actionable, drafts a proposal. Both are best-effort: a failure here is
// logged and never blocks the reply.
func (k *Kernel) reflect(ctx context.Context, userID, runID string, parsed intent.ParsedIntent, result *executor.Result, report verifier.Report) {
	r := reflect.Generate(parsed, result, report)
	if err := k.reflections.Append(ctx, userID, r); err != nil {
		slog.Warn("Failed to append reflection", "error", err, "trace_id", logger.GetTraceID(ctx))
	}

	if !r.Actionable() || k.proposals == nil {
		return
	}

	pattern := intent.Normalize(result.OriginalText)
	if pattern == "" {
		return
	}
	draft := proposal.Draft{
		Pattern:     pattern,
		Action:      proposal.RuleAction{Intent: string(parsed.Intent), Params: parsed.Params},
		Description: r.Suggestion,
		SourceRunID: runID,
	}
	if _, err := k.proposals.Create(ctx, userID, draft); err != nil {
		slog.Warn("Failed to create proposal", "error", err, "trace_id", logger.GetTraceID(ctx))
	}
}

// Store exposes the backing store for the adapters and scheduler.
func (k *Kernel) Store() *store.Store { return k.store }
