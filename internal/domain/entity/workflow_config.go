package entity

import "time"

// WorkflowConfig is the singleton holding the current default role ordering
// applied to newly created requests. Existing requests keep the snapshot
// taken at their creation and are never affected by later updates.
type WorkflowConfig struct {
	Order     []Role    `json:"workflow_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultWorkflowOrder returns the ordering used when no configuration has
// ever been written. Absence of the singleton is a valid, handled state.
func DefaultWorkflowOrder() []Role {
	return []Role{RoleL1, RoleL2, RoleL3}
}
