// Package proposal owns the self-modification lifecycle: reflections with
// actionable suggestions become PENDING proposals, the user approves or
// rejects them, approved proposals materialize as active rules, and an
// approved proposal can later be rolled back, deactivating its rules.
package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/logger"
	"github.com/harunnryd/kaizen/internal/store"
)

const defaultRulePriority = 10

type Engine struct {
	store *store.Store
}

func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Draft is everything needed to persist a new alias proposal.
type Draft struct {
	Pattern     string
	Action      RuleAction
	Description string
	SourceRunID string
}

// Create persists a PENDING proposal from an actionable reflection.
func (e *Engine) Create(ctx context.Context, userID string, draft Draft) (*store.Proposal, error) {
	if draft.Pattern == "" {
		return nil, errors.InvalidInput("proposal pattern must not be empty")
	}
	actionJSON, err := json.Marshal(draft.Action)
	if err != nil {
		return nil, err
	}

	p, err := e.store.CreateProposal(ctx, &store.Proposal{
		UserID:      userID,
		RuleType:    RuleTypeAlias,
		Pattern:     draft.Pattern,
		Action:      actionJSON,
		Description: draft.Description,
		Priority:    defaultRulePriority,
		SourceRunID: draft.SourceRunID,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Proposal created",
		"proposal_id", p.ID, "pattern", draft.Pattern, "trace_id", logger.GetTraceID(ctx))
	return p, nil
}

// Approve flips a PENDING proposal the user owns to APPROVED and returns the
// rule materialized from it.
func (e *Engine) Approve(ctx context.Context, proposalID, userID string) (*store.Rule, error) {
	p, err := e.owned(ctx, proposalID, userID)
	if err != nil {
		return nil, err
	}

	rule, won, err := e.store.ApproveProposal(ctx, p)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, errors.Conflict(fmt.Sprintf("proposal is %s, not PENDING", p.Status))
	}

	slog.Info("Proposal approved",
		"proposal_id", proposalID, "rule_id", rule.ID, "trace_id", logger.GetTraceID(ctx))
	return rule, nil
}

// Reject flips PENDING -> REJECTED. No rule is created.
func (e *Engine) Reject(ctx context.Context, proposalID, userID string) error {
	p, err := e.owned(ctx, proposalID, userID)
	if err != nil {
		return err
	}

	won, err := e.store.RejectProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if !won {
		return errors.Conflict(fmt.Sprintf("proposal is %s, not PENDING", p.Status))
	}
	return nil
}

// Rollback flips APPROVED -> ROLLED_BACK and deactivates only the rules this
// proposal created. Returns how many rules were deactivated.
func (e *Engine) Rollback(ctx context.Context, proposalID, userID string) (int64, error) {
	p, err := e.owned(ctx, proposalID, userID)
	if err != nil {
		return 0, err
	}

	deactivated, won, err := e.store.RollbackProposal(ctx, proposalID)
	if err != nil {
		return 0, err
	}
	if !won {
		return 0, errors.Conflict(fmt.Sprintf("proposal is %s, only APPROVED can be rolled back", p.Status))
	}

	slog.Info("Proposal rolled back",
		"proposal_id", proposalID, "rules_deactivated", deactivated, "trace_id", logger.GetTraceID(ctx))
	return deactivated, nil
}

// List returns the user's proposals, optionally filtered by status.
func (e *Engine) List(ctx context.Context, userID string, status store.ProposalStatus) ([]store.Proposal, error) {
	return e.store.ListProposals(ctx, userID, status)
}

func (e *Engine) owned(ctx context.Context, proposalID, userID string) (*store.Proposal, error) {
	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, errors.PermissionDenied("proposal belongs to another user")
	}
	return p, nil
}
