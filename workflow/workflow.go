// Package workflow holds the task status state machine: which statuses
// follow which, and which roles may apply a transition directly versus
// only request one. The functions here are pure; persistence and HTTP
// mapping live in the controllers.
package workflow

import (
	"errors"
	"fmt"

	"github.com/Pavitraraman/oneflow/constants"
)

var (
	// ErrInvalidTransition means the target is not the single forward
	// successor of the task's current status. Never retried.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnauthorized means the acting role is not recognized by the
	// status workflow at all.
	ErrUnauthorized = errors.New("role not permitted to change task status")
)

// Outcome is the authority's answer to a transition attempt. Pending is
// deliberately distinct from Applied: an accepted request has not changed
// the task's status yet.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomePending Outcome = "pending"
)

// Next returns the single forward successor of s. ok is false for DONE
// (terminal) and for unknown statuses.
func Next(s constants.TaskStatus) (next constants.TaskStatus, ok bool) {
	switch s {
	case constants.TaskStatusTodo:
		return constants.TaskStatusInProgress, true
	case constants.TaskStatusInProgress:
		return constants.TaskStatusInReview, true
	case constants.TaskStatusInReview:
		return constants.TaskStatusDone, true
	}
	return "", false
}

// Decide evaluates a transition intent against the state machine and the
// role rules. It does not touch storage: callers apply the decision
// atomically against the persisted task.
//
// ADMIN and PROJECT_MANAGER get OutcomeApplied; TEAM_MEMBER gets
// OutcomePending, which records the target as a status request instead of
// changing the status. Any target that is not exactly one forward step
// from `from` is rejected, whatever the role. Backward moves and skips
// stay rejected until product says otherwise.
func Decide(role constants.Role, from, to constants.TaskStatus) (Outcome, error) {
	next, ok := Next(from)
	if !ok || to != next {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	switch role {
	case constants.RoleAdmin, constants.RoleProjectManager:
		return OutcomeApplied, nil
	case constants.RoleTeamMember:
		return OutcomePending, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnauthorized, role)
}
