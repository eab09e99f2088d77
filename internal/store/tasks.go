package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"
)

func (s *Store) CreateTask(ctx context.Context, userID, title string) (*Task, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, status, priority, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		userID, title, TaskOpen, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Task{ID: id, UserID: userID, Title: title, Status: TaskOpen, CreatedAt: now}, nil
}

func (s *Store) ListOpenTasks(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, status, priority, created_at, done_at
		FROM tasks WHERE user_id = ? AND status = ?
		ORDER BY priority DESC, created_at ASC`,
		userID, TaskOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.Priority, &t.CreatedAt, &t.DoneAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CloseTask marks an open task done. Returns ErrNotFound when the task does
// not exist, is owned by someone else, or is already closed.
func (s *Store) CloseTask(ctx context.Context, userID string, taskID int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, done_at = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		TaskDone, now, taskID, userID, TaskOpen)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kzErrors.NotFound("task not found")
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kzErrors.NotFound("task not found")
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID string, taskID int64) (*Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, status, priority, created_at, done_at
		FROM tasks WHERE id = ? AND user_id = ?`,
		taskID, userID).Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.Priority, &t.CreatedAt, &t.DoneAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kzErrors.NotFound("task not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
