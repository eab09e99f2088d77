package store

import "time"

type TaskStatus string

const (
	TaskOpen TaskStatus = "OPEN"
	TaskDone TaskStatus = "DONE"
)

type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type ProposalStatus string

const (
	ProposalPending    ProposalStatus = "PENDING"
	ProposalApproved   ProposalStatus = "APPROVED"
	ProposalRejected   ProposalStatus = "REJECTED"
	ProposalRolledBack ProposalStatus = "ROLLED_BACK"
)

type Task struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	Priority  int        `json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

type Run struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	InputText string    `json:"input_text"`
	Intent    string    `json:"intent"`
	Plan      []byte    `json:"plan_json,omitempty"`
	Result    []byte    `json:"result_json,omitempty"`
	Status    RunStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Approval struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	ActionType string         `json:"action_type"`
	Payload    []byte         `json:"payload_json"`
	Status     ApprovalStatus `json:"status"`
	Result     []byte         `json:"result_json,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty"`
}

type Proposal struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	RuleType    string         `json:"rule_type"`
	Pattern     string         `json:"pattern"`
	Action      []byte         `json:"action_json"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"`
	Status      ProposalStatus `json:"status"`
	SourceRunID string         `json:"source_run_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
}

type Rule struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ProposalID    string     `json:"proposal_id,omitempty"`
	RuleType      string     `json:"rule_type"`
	Pattern       string     `json:"pattern"`
	Action        []byte     `json:"action_json"`
	Priority      int        `json:"priority"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}
