package builtin

import (
	"context"
	"strings"
	"testing"

	"github.com/harunnryd/kaizen/internal/store"
)

func newTaskTool(t *testing.T) (*TaskTool, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir(), store.Options{SkipLock: true})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewTaskTool(st), st
}

func TestTaskCreateReturnsTaskID(t *testing.T) {
	tt, _ := newTaskTool(t)

	res, err := tt.Execute(context.Background(), "create", map[string]any{"title": "buy milk"}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("expected success: %v", res)
	}
	if _, ok := res["task_id"]; !ok {
		t.Fatal("task_id missing, the verifier postcondition depends on it")
	}
}

func TestTaskCloseAcceptsStringID(t *testing.T) {
	tt, st := newTaskTool(t)
	ctx := context.Background()

	task, err := st.CreateTask(ctx, "u1", "x")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Classifier entities arrive as strings; the tool must coerce.
	res, err := tt.Execute(ctx, "close", map[string]any{"task_id": "1"}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success() {
		t.Fatalf("close failed: %v", res)
	}

	got, err := st.GetTask(ctx, "u1", task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != store.TaskDone {
		t.Fatalf("status = %s, want DONE", got.Status)
	}
}

func TestTaskCloseMissingIsDomainFailure(t *testing.T) {
	tt, _ := newTaskTool(t)

	res, err := tt.Execute(context.Background(), "close", map[string]any{"task_id": int64(99)}, "u1")
	if err != nil {
		t.Fatalf("a missing task is not an invocation error: %v", err)
	}
	if res.Success() || !strings.Contains(res.Err(), "No open task") {
		t.Fatalf("unexpected result: %v", res)
	}
}

func TestTaskCreateRequiresTitle(t *testing.T) {
	tt, _ := newTaskTool(t)

	res, err := tt.Execute(context.Background(), "create", map[string]any{}, "u1")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if res.Success() {
		t.Fatalf("missing title must fail: %v", res)
	}
}
