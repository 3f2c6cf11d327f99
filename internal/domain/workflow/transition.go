// Package workflow holds the pure approval state machine: how a request's
// status and current stage evolve under approve and reject actions. It has
// no persistence or transport concerns; the application layer drives it and
// stores the results.
package workflow

import (
	"github.com/approvalhq/workflow-service/internal/domain/entity"
)

// InitialState computes the status and stage for a newly created request.
// When the first role in the order is the requester's own role the request
// starts at stage 1 instead of 0: a requester cannot be required to approve
// their own submission. The skip applies to position 0 only; a requester
// role appearing later in the order is not skipped.
func InitialState(order []entity.Role, requester entity.Role) (entity.Status, int) {
	if len(order) > 0 && order[0].Equals(requester) {
		if len(order) == 1 {
			// The skip lands past the end of a single-entry order, which
			// leaves nothing to approve. The request is final immediately,
			// with the stage pinned in range.
			return entity.StatusApproved, 0
		}
		return entity.StatusPending, 1
	}
	return entity.StatusPending, 0
}

// Transition applies an approve or reject action to a pending request at
// the given stage and returns the resulting status and stage.
//
// Approve advances one stage; advancing past the end of the snapshot is the
// final approval and keeps the stage at the last approving index rather
// than persisting an out-of-range value. Reject sends the request back one
// stage for rework, or terminally rejects it when already at stage 0.
func Transition(action entity.Action, stage, snapshotLen int) (entity.Status, int, error) {
	switch action {
	case entity.ActionApprove:
		next := stage + 1
		if next >= snapshotLen {
			return entity.StatusApproved, stage, nil
		}
		return entity.StatusPending, next, nil
	case entity.ActionReject:
		if stage > 0 {
			return entity.StatusPending, stage - 1, nil
		}
		return entity.StatusRejected, 0, nil
	default:
		return "", 0, ErrInvalidArgument
	}
}

// IsTurn reports whether the given role may act on the request right now.
// This is the single authority check: the request must still be pending,
// the current stage must point inside the snapshot, and the snapshot role
// at that stage must match the acting role (case-insensitive).
func IsTurn(req *entity.ApprovalRequest, role entity.Role) bool {
	if req.Status != entity.StatusPending {
		return false
	}
	stageRole, ok := req.StageRole()
	return ok && stageRole.Equals(role)
}
