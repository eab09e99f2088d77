package store

import (
	"context"
	"testing"

	kzErrors "github.com/harunnryd/kaizen/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), Options{SkipLock: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "u1", "write report")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.ID == 0 || task.Status != TaskOpen {
		t.Fatalf("unexpected task: %+v", task)
	}

	open, err := s.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open task, got %d", len(open))
	}

	if err := s.CloseTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("CloseTask failed: %v", err)
	}
	// Already closed: the guarded update matches zero rows.
	if err := s.CloseTask(ctx, "u1", task.ID); !kzErrors.IsCategory(err, kzErrors.ErrNotFound) {
		t.Fatalf("expected not-found on double close, got %v", err)
	}

	open, err = s.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected 0 open tasks, got %d", len(open))
	}
}

func TestTasksAreScopedPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "u1", "mine")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := s.CloseTask(ctx, "u2", task.ID); !kzErrors.IsCategory(err, kzErrors.ErrNotFound) {
		t.Fatalf("expected not-found for foreign user, got %v", err)
	}
	if err := s.DeleteTask(ctx, "u2", task.ID); !kzErrors.IsCategory(err, kzErrors.ErrNotFound) {
		t.Fatalf("expected not-found for foreign delete, got %v", err)
	}
}

func TestRunLedgerAppendThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runID, err := s.CreateRun(ctx, "u1", "add task x", "add_task")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != RunRunning {
		t.Fatalf("fresh run should be RUNNING, got %s", run.Status)
	}

	if err := s.UpdateRun(ctx, runID, RunCompleted, []byte(`{"steps":[]}`), []byte(`{"success":true}`)); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}
	run, err = s.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != RunCompleted || len(run.Result) == 0 {
		t.Fatalf("unexpected run after update: %+v", run)
	}
}

func TestDecideApprovalWinsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateApproval(ctx, "u1", "task_tool.delete", []byte(`{"tool":"task_tool"}`))
	if err != nil {
		t.Fatalf("CreateApproval failed: %v", err)
	}

	won, err := s.DecideApproval(ctx, a.ID, ApprovalApproved)
	if err != nil {
		t.Fatalf("DecideApproval failed: %v", err)
	}
	if !won {
		t.Fatal("first decision should win")
	}

	won, err = s.DecideApproval(ctx, a.ID, ApprovalRejected)
	if err != nil {
		t.Fatalf("second DecideApproval failed: %v", err)
	}
	if won {
		t.Fatal("second decision must lose the compare-and-swap")
	}

	got, err := s.GetApproval(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetApproval failed: %v", err)
	}
	if got.Status != ApprovalApproved || got.DecidedAt == nil {
		t.Fatalf("unexpected approval after decide: %+v", got)
	}
}

func TestProposalApproveMaterializesRule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProposal(ctx, &Proposal{
		UserID:   "u1",
		RuleType: "alias",
		Pattern:  "gm",
		Action:   []byte(`{"intent":"daily_brief"}`),
		Priority: 10,
	})
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}

	rule, won, err := s.ApproveProposal(ctx, p)
	if err != nil {
		t.Fatalf("ApproveProposal failed: %v", err)
	}
	if !won {
		t.Fatal("approve should win on a PENDING proposal")
	}
	if rule.Pattern != "gm" || !rule.IsActive || rule.ProposalID != p.ID {
		t.Fatalf("unexpected rule: %+v", rule)
	}

	active, err := s.ActiveRules(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveRules failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active rule, got %d", len(active))
	}

	// A second approve must lose: the proposal is no longer PENDING.
	if _, won, err := s.ApproveProposal(ctx, p); err != nil || won {
		t.Fatalf("second approve: won=%v err=%v", won, err)
	}
}

func TestProposalRollbackDeactivatesOnlyItsRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, _ := s.CreateProposal(ctx, &Proposal{
		UserID: "u1", RuleType: "alias", Pattern: "gm",
		Action: []byte(`{"intent":"daily_brief"}`), Priority: 10,
	})
	second, _ := s.CreateProposal(ctx, &Proposal{
		UserID: "u1", RuleType: "alias", Pattern: "standup",
		Action: []byte(`{"intent":"list_tasks"}`), Priority: 5,
	})
	if _, _, err := s.ApproveProposal(ctx, first); err != nil {
		t.Fatalf("approve first: %v", err)
	}
	if _, _, err := s.ApproveProposal(ctx, second); err != nil {
		t.Fatalf("approve second: %v", err)
	}

	deactivated, won, err := s.RollbackProposal(ctx, first.ID)
	if err != nil {
		t.Fatalf("RollbackProposal failed: %v", err)
	}
	if !won || deactivated != 1 {
		t.Fatalf("expected to deactivate exactly 1 rule, won=%v n=%d", won, deactivated)
	}

	active, err := s.ActiveRules(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveRules failed: %v", err)
	}
	if len(active) != 1 || active[0].Pattern != "standup" {
		t.Fatalf("unexpected surviving rules: %+v", active)
	}

	// Rollback is only legal from APPROVED.
	if _, won, err := s.RollbackProposal(ctx, first.ID); err != nil || won {
		t.Fatalf("second rollback: won=%v err=%v", won, err)
	}
}

func TestMemoriesUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetMemory(ctx, "u1", "k")
	if err != nil {
		t.Fatalf("GetMemory failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unset key, got %q", got)
	}

	if err := s.SetMemory(ctx, "u1", "k", []byte(`"v1"`)); err != nil {
		t.Fatalf("SetMemory failed: %v", err)
	}
	if err := s.SetMemory(ctx, "u1", "k", []byte(`"v2"`)); err != nil {
		t.Fatalf("SetMemory upsert failed: %v", err)
	}

	got, err = s.GetMemory(ctx, "u1", "k")
	if err != nil {
		t.Fatalf("GetMemory failed: %v", err)
	}
	if string(got) != `"v2"` {
		t.Fatalf("expected latest value, got %s", got)
	}
}

func TestKnownUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTask(ctx, "u1", "a"); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := s.CreateRun(ctx, "u2", "hi", "unknown"); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	users, err := s.KnownUsers(ctx)
	if err != nil {
		t.Fatalf("KnownUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %v", users)
	}
}
