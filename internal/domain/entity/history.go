package entity

import "time"

// Action enumerates what can be recorded against a request
type Action string

const (
	ActionCreated Action = "created"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// IsValid returns true for actions an approver may submit
func (a Action) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// HistoryRecord is one append-only audit entry for a request. Stage always
// captures the stage index at the time the action was taken, not the stage
// the request moved to.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"request_id"`
	Stage     int       `json:"stage"`
	Role      Role      `json:"role"`
	Action    Action    `json:"action"`
	Comment   string    `json:"comment,omitempty"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}
