package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActiveRules returns the user's active rules ordered by descending priority.
// The first match wins during rule evaluation, so order matters here.
func (s *Store) ActiveRules(ctx context.Context, userID string) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, proposal_id, rule_type, pattern, action_json, priority, is_active, created_at, deactivated_at
		FROM active_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY priority DESC, created_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRules(rows)
}

// RulesByProposal returns every rule created from a proposal, active or not.
func (s *Store) RulesByProposal(ctx context.Context, proposalID string) ([]Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, proposal_id, rule_type, pattern, action_json, priority, is_active, created_at, deactivated_at
		FROM active_rules
		WHERE proposal_id = ?
		ORDER BY created_at ASC`,
		proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRules(rows)
}

// CreateRule inserts a rule directly, outside the proposal flow. Used by tests
// and manual seeding; the normal path is Store.ApproveProposal.
func (s *Store) CreateRule(ctx context.Context, r *Rule) (*Rule, error) {
	if r.ID == "" {
		r.ID = ulid.Make().String()
	}
	r.IsActive = true
	r.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_rules (id, user_id, proposal_id, rule_type, pattern, action_json, priority, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		r.ID, r.UserID, r.ProposalID, r.RuleType, r.Pattern, string(r.Action), r.Priority, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanRules(rows *sql.Rows) ([]Rule, error) {
	var rules []Rule
	for rows.Next() {
		var r Rule
		var proposalID sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &proposalID, &r.RuleType, &r.Pattern, &r.Action, &r.Priority, &r.IsActive, &r.CreatedAt, &r.DeactivatedAt); err != nil {
			return nil, err
		}
		if proposalID.Valid {
			r.ProposalID = proposalID.String
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
