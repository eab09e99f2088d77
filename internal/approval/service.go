// Package approval implements the decision state machine over stored
// ApprovalRequests. A request is decided at most once: the PENDING -> decided
// transition is a compare-and-swap in the store, so concurrent deciders
// cannot both win, and an approved payload is never executed twice.
package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/executor"
	"github.com/harunnryd/kaizen/internal/logger"
	"github.com/harunnryd/kaizen/internal/store"
)

// Runner executes a previously approved payload with the risk gate bypassed.
// Bound late during wiring to avoid constructing the service and the executor
// in a fixed order.
type Runner interface {
	ExecutePayload(ctx context.Context, payload executor.ApprovalPayload, userID string) (*executor.Result, error)
}

type Service struct {
	store  *store.Store
	runner Runner
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// BindRunner attaches the executor used to resume approved payloads.
func (s *Service) BindRunner(r Runner) { s.runner = r }

// Decision is what the adapter renders back to the user.
type Decision struct {
	ApprovalID string
	Status     store.ApprovalStatus
	Executed   *executor.Result
}

// Decide resolves a pending request. Only the requesting user may decide it.
// On approval the stored payload is executed exactly once and the outcome
// recorded on the request; on rejection nothing runs.
func (s *Service) Decide(ctx context.Context, approvalID, userID string, approve bool) (*Decision, error) {
	req, err := s.store.GetApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, errors.PermissionDenied("approval belongs to another user")
	}

	to := store.ApprovalRejected
	if approve {
		to = store.ApprovalApproved
	}

	won, err := s.store.DecideApproval(ctx, approvalID, to)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the CAS: somebody already decided. Re-read for the message.
		current, rerr := s.store.GetApproval(ctx, approvalID)
		status := "decided"
		if rerr == nil && current != nil {
			status = string(current.Status)
		}
		return nil, errors.Conflict(fmt.Sprintf("approval already %s", status))
	}

	slog.Info("Approval decided",
		"approval_id", approvalID, "status", to, "trace_id", logger.GetTraceID(ctx))

	decision := &Decision{ApprovalID: approvalID, Status: to}
	if !approve {
		return decision, nil
	}

	if s.runner == nil {
		return nil, errors.Internal("approval runner not bound")
	}

	var payload executor.ApprovalPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return nil, errors.Wrap(err, "corrupt approval payload")
	}

	result, err := s.runner.ExecutePayload(ctx, payload, userID)
	if err != nil {
		return nil, errors.Wrap(err, "approved action failed")
	}
	decision.Executed = result

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode approval result")
	}
	if err := s.store.RecordApprovalResult(ctx, approvalID, resultJSON); err != nil {
		return nil, err
	}
	return decision, nil
}

// List returns the user's requests, optionally filtered by status.
func (s *Service) List(ctx context.Context, userID string, status store.ApprovalStatus) ([]store.Approval, error) {
	return s.store.ListApprovals(ctx, userID, status)
}
