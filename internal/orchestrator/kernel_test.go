package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harunnryd/kaizen/internal/approval"
	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/guardrails"
	"github.com/harunnryd/kaizen/internal/intent"
	"github.com/harunnryd/kaizen/internal/prefs"
	"github.com/harunnryd/kaizen/internal/proposal"
	"github.com/harunnryd/kaizen/internal/ratelimit"
	"github.com/harunnryd/kaizen/internal/reflect"
	"github.com/harunnryd/kaizen/internal/store"
	"github.com/harunnryd/kaizen/internal/tool"
	"github.com/harunnryd/kaizen/internal/tool/builtin"
)

func newTestKernel(t *testing.T, limiter *ratelimit.Limiter) (*Kernel, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir(), store.Options{SkipLock: true})
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	prefsSvc := prefs.NewService(st)
	engine := proposal.NewEngine(st)
	approvalSvc := approval.NewService(st)

	registry := tool.NewRegistry()
	registry.Register(builtin.NewTaskTool(st))
	registry.Register(builtin.NewBriefTool(st, prefsSvc))
	registry.Register(builtin.NewPreferenceTool(prefsSvc))
	registry.Register(builtin.NewProposalTool(engine))
	registry.Register(builtin.NewApprovalTool(approvalSvc))

	exec := executor.New(registry, guardrails.NewTable(nil), st, 6, time.Second)
	approvalSvc.BindRunner(exec)

	kernel := NewKernel(Options{
		Store:       st,
		Rules:       proposal.NewRules(st),
		Resolver:    intent.NewResolver(nil, 0, nil),
		Executor:    exec,
		Reflections: reflect.NewLog(st),
		Proposals:   engine,
		Limiter:     limiter,
	})
	return kernel, st
}

func TestHandleMessageAddAndListTasks(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	reply, err := k.HandleMessage(ctx, "u1", "add task Buy milk")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "Added task") || !strings.Contains(reply.Text, "Buy milk") {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	run, err := st.GetRun(ctx, reply.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != store.RunCompleted || run.Intent != "add_task" {
		t.Fatalf("unexpected run: %+v", run)
	}

	reply, err = k.HandleMessage(ctx, "u1", "list tasks")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "Buy milk") {
		t.Fatalf("list should show the task: %q", reply.Text)
	}
}

func TestHandleMessageHighRiskNeedsApproval(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	if _, err := k.HandleMessage(ctx, "u1", "add task Doomed"); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	reply, err := k.HandleMessage(ctx, "u1", "delete task 1")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "Approval required") {
		t.Fatalf("expected approval prompt, got %q", reply.Text)
	}

	run, err := st.GetRun(ctx, reply.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != store.RunFailed {
		t.Fatalf("a run paused on approval has not done its work, want FAILED, got %s", run.Status)
	}

	tasks, err := st.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatal("task must survive until approved")
	}

	pending, err := st.ListApprovals(ctx, "u1", store.ApprovalPending)
	if err != nil {
		t.Fatalf("ListApprovals failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending approvals = %d, want 1", len(pending))
	}

	// Approving re-enters the executor with the stored payload.
	reply, err = k.HandleMessage(ctx, "u1", "approve "+pending[0].ID)
	if err != nil {
		t.Fatalf("HandleMessage approve failed: %v", err)
	}
	if !strings.Contains(reply.Text, "granted") {
		t.Fatalf("unexpected approval reply: %q", reply.Text)
	}

	tasks, err = st.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatal("approved delete should have removed the task")
	}
}

func TestHandleMessageUnknownCreatesProposal(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	reply, err := k.HandleMessage(ctx, "u1", "please water my plants")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "didn't understand") {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	run, err := st.GetRun(ctx, reply.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != store.RunFailed {
		t.Fatalf("unknown run should be FAILED, got %s", run.Status)
	}

	proposals, err := st.ListProposals(ctx, "u1", store.ProposalPending)
	if err != nil {
		t.Fatalf("ListProposals failed: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("proposals = %d, want 1", len(proposals))
	}
	if proposals[0].SourceRunID != reply.RunID {
		t.Fatalf("proposal must reference the source run: %+v", proposals[0])
	}
	if proposals[0].Pattern != "please water my plants" {
		t.Fatalf("unexpected pattern: %q", proposals[0].Pattern)
	}
}

func TestHandleMessageRuleShortCircuit(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	_, err := st.CreateRule(ctx, &store.Rule{
		UserID:   "u1",
		RuleType: "alias",
		Pattern:  "gm",
		Action:   []byte(`{"intent":"daily_brief"}`),
		Priority: 10,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	reply, err := k.HandleMessage(ctx, "u1", "gm")
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}
	if !strings.Contains(reply.Text, "Daily brief") {
		t.Fatalf("rule should trigger the brief: %q", reply.Text)
	}

	run, err := st.GetRun(ctx, reply.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Intent != "daily_brief" {
		t.Fatalf("ledger intent = %s, want daily_brief", run.Intent)
	}
}

func TestHandleMessageRateLimited(t *testing.T) {
	k, _ := newTestKernel(t, ratelimit.New(1, time.Minute))
	ctx := context.Background()

	if _, err := k.HandleMessage(ctx, "u1", "list tasks"); err != nil {
		t.Fatalf("first message failed: %v", err)
	}
	_, err := k.HandleMessage(ctx, "u1", "list tasks")
	if !errors.IsCategory(err, errors.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestHandleMessageScreensInput(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	ctx := context.Background()

	if _, err := k.HandleMessage(ctx, "u1", "   "); !errors.IsCategory(err, errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank message, got %v", err)
	}
	if _, err := k.HandleMessage(ctx, "u1", "run sudo rm -rf / now"); !errors.IsCategory(err, errors.ErrInvalidInput) {
		t.Fatalf("expected blocked pattern rejection, got %v", err)
	}
}

func TestHandleMessageTruncatesLongInput(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	long := "add task " + strings.Repeat("x", 5000)
	reply, err := k.HandleMessage(ctx, "u1", long)
	if err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	tasks, err := st.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("truncated input should still resolve, reply=%q", reply.Text)
	}
	if len(tasks[0].Title) > 4000 {
		t.Fatalf("title length = %d, input was not truncated", len(tasks[0].Title))
	}
}

func TestHandleMessageTruncatesOnRuneBoundary(t *testing.T) {
	k, st := newTestKernel(t, nil)
	ctx := context.Background()

	// "é" is two bytes; the byte cap lands mid-rune, so the cut must back up.
	long := "add task " + strings.Repeat("é", 3000)
	if _, err := k.HandleMessage(ctx, "u1", long); err != nil {
		t.Fatalf("HandleMessage failed: %v", err)
	}

	tasks, err := st.ListOpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOpenTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatal("truncated input should still resolve")
	}
	if !utf8.ValidString(tasks[0].Title) {
		t.Fatal("truncation split a rune")
	}
	if len(tasks[0].Title) > 4000 {
		t.Fatalf("title length = %d, input was not truncated", len(tasks[0].Title))
	}
}
