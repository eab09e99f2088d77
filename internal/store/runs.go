package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"

	"github.com/oklog/ulid/v2"
)

// CreateRun appends a new ledger row with status RUNNING. The row is updated
// once the pipeline finishes, so a crash mid-run stays visible in the audit
// trail.
func (s *Store) CreateRun(ctx context.Context, userID, inputText, intent string) (string, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (id, user_id, input_text, intent, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, inputText, intent, RunRunning, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateRun(ctx context.Context, runID string, status RunStatus, planJSON, resultJSON []byte) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_runs SET status = ?, plan_json = ?, result_json = ?
		WHERE id = ?`,
		status, string(planJSON), string(resultJSON), runID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kzErrors.NotFound("run not found")
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var plan, result sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, input_text, intent, plan_json, result_json, status, created_at
		FROM agent_runs WHERE id = ?`,
		runID).Scan(&r.ID, &r.UserID, &r.InputText, &r.Intent, &plan, &result, &r.Status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kzErrors.NotFound("run not found")
	}
	if err != nil {
		return nil, err
	}
	if plan.Valid {
		r.Plan = []byte(plan.String)
	}
	if result.Valid {
		r.Result = []byte(result.String)
	}
	return &r, nil
}
