package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"

	"github.com/oklog/ulid/v2"
)

func (s *Store) CreateApproval(ctx context.Context, userID, actionType string, payloadJSON []byte) (*Approval, error) {
	now := time.Now().UTC()
	a := &Approval{
		ID:         ulid.Make().String(),
		UserID:     userID,
		ActionType: actionType,
		Payload:    payloadJSON,
		Status:     ApprovalPending,
		CreatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO approval_requests (id, user_id, action_type, payload_json, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.ActionType, string(a.Payload), a.Status, a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) GetApproval(ctx context.Context, id string) (*Approval, error) {
	var a Approval
	var result sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, action_type, payload_json, status, result_json, created_at, decided_at
		FROM approval_requests WHERE id = ?`,
		id).Scan(&a.ID, &a.UserID, &a.ActionType, &a.Payload, &a.Status, &result, &a.CreatedAt, &a.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kzErrors.NotFound("approval request not found")
	}
	if err != nil {
		return nil, err
	}
	if result.Valid {
		a.Result = []byte(result.String)
	}
	return &a, nil
}

// DecideApproval flips a PENDING request to the given terminal status. The
// WHERE clause is the compare-and-swap: when two deciders race, exactly one
// sees rows-affected == 1.
func (s *Store) DecideApproval(ctx context.Context, id string, to ApprovalStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE approval_requests SET status = ?, decided_at = ?
		WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, ApprovalPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// RecordApprovalResult stores the execution outcome of an approved payload
// alongside the request.
func (s *Store) RecordApprovalResult(ctx context.Context, id string, resultJSON []byte) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE approval_requests SET result_json = ? WHERE id = ?`,
		string(resultJSON), id)
	return err
}

func (s *Store) ListApprovals(ctx context.Context, userID string, status ApprovalStatus) ([]Approval, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action_type, payload_json, status, result_json, created_at, decided_at
		FROM approval_requests
		WHERE user_id = ? AND (? = '' OR status = ?)
		ORDER BY created_at DESC`,
		userID, string(status), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []Approval
	for rows.Next() {
		var a Approval
		var result sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActionType, &a.Payload, &a.Status, &result, &a.CreatedAt, &a.DecidedAt); err != nil {
			return nil, err
		}
		if result.Valid {
			a.Result = []byte(result.String)
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}
