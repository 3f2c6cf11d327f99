package entity

import "time"

// Status represents the lifecycle state of an approval request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsTerminal returns true once the request can no longer change state
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ApprovalRequest is the per-request ledger entry. Title, description,
// requester and the workflow snapshot are fixed at creation; only status,
// current stage and the updated timestamp change afterwards.
type ApprovalRequest struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Requester        string    `json:"requester"`
	Status           Status    `json:"status"`
	CurrentStage     int       `json:"current_stage"`
	WorkflowSnapshot []Role    `json:"workflow_snapshot"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StageRole returns the role whose approval is currently required,
// or false when the current stage does not point inside the snapshot.
func (r *ApprovalRequest) StageRole() (Role, bool) {
	if r.CurrentStage < 0 || r.CurrentStage >= len(r.WorkflowSnapshot) {
		return "", false
	}
	return r.WorkflowSnapshot[r.CurrentStage], true
}
