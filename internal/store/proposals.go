package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"

	"github.com/oklog/ulid/v2"
)

func (s *Store) CreateProposal(ctx context.Context, p *Proposal) (*Proposal, error) {
	p.ID = ulid.Make().String()
	p.Status = ProposalPending
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, user_id, rule_type, pattern, action_json, description, priority, status, source_run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.RuleType, p.Pattern, string(p.Action), p.Description, p.Priority, p.Status, p.SourceRunID, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetProposal(ctx context.Context, id string) (*Proposal, error) {
	var p Proposal
	var sourceRun sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, rule_type, pattern, action_json, description, priority, status, source_run_id, created_at, decided_at
		FROM proposals WHERE id = ?`,
		id).Scan(&p.ID, &p.UserID, &p.RuleType, &p.Pattern, &p.Action, &p.Description, &p.Priority, &p.Status, &sourceRun, &p.CreatedAt, &p.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kzErrors.NotFound("proposal not found")
	}
	if err != nil {
		return nil, err
	}
	if sourceRun.Valid {
		p.SourceRunID = sourceRun.String
	}
	return &p, nil
}

func (s *Store) ListProposals(ctx context.Context, userID string, status ProposalStatus) ([]Proposal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, rule_type, pattern, action_json, description, priority, status, source_run_id, created_at, decided_at
		FROM proposals
		WHERE user_id = ? AND (? = '' OR status = ?)
		ORDER BY created_at DESC`,
		userID, string(status), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		var p Proposal
		var sourceRun sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.RuleType, &p.Pattern, &p.Action, &p.Description, &p.Priority, &p.Status, &sourceRun, &p.CreatedAt, &p.DecidedAt); err != nil {
			return nil, err
		}
		if sourceRun.Valid {
			p.SourceRunID = sourceRun.String
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// ApproveProposal atomically flips a PENDING proposal to APPROVED and
// materializes its rule in the same transaction. Returns the created rule and
// whether the compare-and-swap won.
func (s *Store) ApproveProposal(ctx context.Context, p *Proposal) (*Rule, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE proposals SET status = ?, decided_at = ?
		WHERE id = ? AND status = ?`,
		ProposalApproved, now, p.ID, ProposalPending)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		return nil, false, nil
	}

	rule := &Rule{
		ID:         ulid.Make().String(),
		UserID:     p.UserID,
		ProposalID: p.ID,
		RuleType:   p.RuleType,
		Pattern:    p.Pattern,
		Action:     p.Action,
		Priority:   p.Priority,
		IsActive:   true,
		CreatedAt:  now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO active_rules (id, user_id, proposal_id, rule_type, pattern, action_json, priority, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		rule.ID, rule.UserID, rule.ProposalID, rule.RuleType, rule.Pattern, string(rule.Action), rule.Priority, rule.CreatedAt)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return rule, true, nil
}

// RejectProposal flips PENDING -> REJECTED. No rule is created.
func (s *Store) RejectProposal(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE proposals SET status = ?, decided_at = ?
		WHERE id = ? AND status = ?`,
		ProposalRejected, time.Now().UTC(), id, ProposalPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RollbackProposal flips APPROVED -> ROLLED_BACK and deactivates every rule
// created from the proposal. Rules are kept for audit, never deleted.
func (s *Store) RollbackProposal(ctx context.Context, id string) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE proposals SET status = ?, decided_at = ?
		WHERE id = ? AND status = ?`,
		ProposalRolledBack, now, id, ProposalApproved)
	if err != nil {
		return 0, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE active_rules SET is_active = 0, deactivated_at = ?
		WHERE proposal_id = ? AND is_active = 1`,
		now, id)
	if err != nil {
		return 0, false, err
	}
	deactivated, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return deactivated, true, nil
}
