package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
)

type TaskTool struct {
	store *store.Store
}

func NewTaskTool(st *store.Store) *TaskTool {
	return &TaskTool{store: st}
}

func (t *TaskTool) Name() string { return "task_tool" }

func (t *TaskTool) Description() string {
	return "Creates, lists, closes, and deletes the user's tasks"
}

func (t *TaskTool) Execute(ctx context.Context, action string, params map[string]any, userID string) (tool.Result, error) {
	switch action {
	case "create":
		return t.create(ctx, params, userID)
	case "list":
		return t.list(ctx, userID)
	case "close":
		return t.close(ctx, params, userID)
	case "delete":
		return t.delete(ctx, params, userID)
	default:
		return nil, fmt.Errorf("%w: task_tool has no action '%s'", tool.ErrUnknownAction, action)
	}
}

func (t *TaskTool) create(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	title, err := stringParam(params, "title")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	task, err := t.store.CreateTask(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	return tool.Ok(map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
		"message": fmt.Sprintf("Added task #%d: %s", task.ID, task.Title),
	}), nil
}

func (t *TaskTool) list(ctx context.Context, userID string) (tool.Result, error) {
	tasks, err := t.store.ListOpenTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return tool.Ok(map[string]any{
			"tasks":   []map[string]any{},
			"count":   0,
			"message": "No open tasks.",
		}), nil
	}

	items := make([]map[string]any, 0, len(tasks))
	var b strings.Builder
	fmt.Fprintf(&b, "Open tasks (%d):", len(tasks))
	for _, task := range tasks {
		items = append(items, map[string]any{"task_id": task.ID, "title": task.Title, "priority": task.Priority})
		fmt.Fprintf(&b, "\n#%d %s", task.ID, task.Title)
	}
	return tool.Ok(map[string]any{
		"tasks":   items,
		"count":   len(tasks),
		"message": b.String(),
	}), nil
}

func (t *TaskTool) close(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	taskID, err := int64Param(params, "task_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	if err := t.store.CloseTask(ctx, userID, taskID); err != nil {
		if errors.IsCategory(err, errors.ErrNotFound) {
			return tool.Fail(fmt.Sprintf("No open task #%d", taskID)), nil
		}
		return nil, err
	}
	return tool.Ok(map[string]any{
		"task_id": taskID,
		"message": fmt.Sprintf("Closed task #%d.", taskID),
	}), nil
}

func (t *TaskTool) delete(ctx context.Context, params map[string]any, userID string) (tool.Result, error) {
	taskID, err := int64Param(params, "task_id")
	if err != nil {
		return tool.Fail(err.Error()), nil
	}

	if err := t.store.DeleteTask(ctx, userID, taskID); err != nil {
		if errors.IsCategory(err, errors.ErrNotFound) {
			return tool.Fail(fmt.Sprintf("No task #%d", taskID)), nil
		}
		return nil, err
	}
	return tool.Ok(map[string]any{
		"task_id": taskID,
		"message": fmt.Sprintf("Deleted task #%d.", taskID),
	}), nil
}
