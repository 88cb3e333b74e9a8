package authz

import (
	"errors"
	"fmt"
	"strings"
)

// LeaveStatus is the lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
	LeaveExpired   LeaveStatus = "expired"
)

// ErrInvalidLeaveStatus is returned for statuses outside the lifecycle.
var ErrInvalidLeaveStatus = errors.New("authz: invalid leave status")

// ParseLeaveStatus converts raw input into a LeaveStatus.
func ParseLeaveStatus(raw string) (LeaveStatus, error) {
	s := LeaveStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled, LeaveExpired:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLeaveStatus, raw)
}

// Terminal reports whether no further transition is possible.
func (s LeaveStatus) Terminal() bool {
	switch s {
	case LeaveApproved, LeaveRejected, LeaveCancelled, LeaveExpired:
		return true
	}
	return false
}

var leaveReadActions = map[Action]struct{}{
	ActionRead:    {},
	ActionExport:  {},
	ActionViewAll: {},
	"view":        {},
}

// Accepts reports whether a leave in state s can take action at all,
// independent of who asks. The empty status is a leave that does not exist yet.
func (s LeaveStatus) Accepts(action Action) bool {
	if s == "" {
		return true
	}
	if _, ok := leaveReadActions[action]; ok {
		return true
	}
	switch s {
	case LeavePending:
		return action != ActionForceEdit
	case LeaveApproved:
		return action == ActionForceEdit
	}
	return false
}

// NextLeaveStatus returns the state a transition action moves a leave into.
// Only pending leaves transition.
func NextLeaveStatus(from LeaveStatus, action Action) (LeaveStatus, bool) {
	if from != LeavePending {
		return from, false
	}
	switch action {
	case ActionApprove:
		return LeaveApproved, true
	case ActionReject:
		return LeaveRejected, true
	case ActionCancel:
		return LeaveCancelled, true
	case ActionExpire:
		return LeaveExpired, true
	}
	return from, false
}
