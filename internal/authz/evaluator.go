package authz

import (
	"fmt"
	"slices"
)

// Every CanPerform* method follows the same order: superadmin allow, admin
// allow (profile carries exceptions), the role table combined with the
// module's ownership or membership gate, then deny. A non-nil error is always
// a configuration error and always comes with false.

// Can dispatches to the module evaluator that matches ctx.
func (e *Engine) Can(role Role, action Action, ctx Context) (bool, error) {
	switch c := ctx.(type) {
	case ProfileContext:
		return e.CanPerformProfileAction(role, action, c)
	case ProjectContext:
		return e.CanPerformProjectAction(role, action, c)
	case TaskContext:
		return e.CanPerformTaskAction(role, action, c)
	case AttendanceContext:
		return e.CanPerformAttendanceAction(role, action, c)
	case LeaveContext:
		return e.CanPerformLeaveAction(role, action, c)
	case ChatContext:
		return e.CanPerformChatAction(role, action, c)
	case TimetrackerContext:
		return e.CanPerformTimetrackerAction(role, action, c)
	}
	return false, fmt.Errorf("%w: context %T", ErrUnknownModule, ctx)
}

// CanPerformProfileAction decides profile actions.
func (e *Engine) CanPerformProfileAction(role Role, action Action, ctx ProfileContext) (bool, error) {
	p, err := e.lookup(ModuleProfile, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin:
		return true, nil
	case RoleAdmin:
		return !adminProfileException(action, ctx), nil
	case RoleHR:
		return p.grants(action, ctx.IsOwnResource, false), nil
	case RoleEmployee:
		return ctx.IsOwnResource && p.grants(action, true, false), nil
	case RoleClient:
		// Same rule as employee today, kept as its own branch.
		if !ctx.IsOwnResource {
			return false, nil
		}
		return p.grants(action, true, false), nil
	}
	return false, nil
}

// adminProfileException lists the superadmin-only profile actions.
func adminProfileException(action Action, ctx ProfileContext) bool {
	switch action {
	case ActionHardDelete:
		return true
	case ActionChangeRole:
		return ctx.RequestedRole == RoleSuperAdmin || ctx.TargetRole == RoleSuperAdmin
	case ActionDelete, ActionActivateDeactivate:
		return ctx.TargetRole == RoleSuperAdmin
	}
	return false
}

// CanPerformProjectAction decides project actions. Employees and clients
// only act on projects they belong to.
func (e *Engine) CanPerformProjectAction(role Role, action Action, ctx ProjectContext) (bool, error) {
	p, err := e.lookup(ModuleProject, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleHR:
		return p.grants(action, false, ctx.IsMember), nil
	case RoleEmployee, RoleClient:
		return ctx.IsMember && p.grants(action, false, true), nil
	}
	return false, nil
}

// CanPerformTaskAction decides task actions. Employees create tasks only in
// their projects, delete only tasks they created and otherwise act on tasks
// they are assigned to, created, or see through project membership.
func (e *Engine) CanPerformTaskAction(role Role, action Action, ctx TaskContext) (bool, error) {
	p, err := e.lookup(ModuleTask, role, action)
	if err != nil {
		return false, err
	}
	assigned := ctx.IsAssigned || ctx.IsMember
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleHR:
		return p.grants(action, ctx.IsOwnTask, assigned), nil
	case RoleEmployee:
		switch action {
		case ActionCreate:
			return ctx.IsMember && p.grants(action, false, true), nil
		case ActionDelete:
			return ctx.IsOwnTask && p.grants(action, true, assigned), nil
		}
		inScope := ctx.IsMember || ctx.IsAssigned || ctx.IsOwnTask
		return inScope && p.grants(action, ctx.IsOwnTask, assigned), nil
	case RoleClient:
		return ctx.IsMember && p.grants(action, false, true), nil
	}
	return false, nil
}

// CanPerformAttendanceAction decides attendance actions.
func (e *Engine) CanPerformAttendanceAction(role Role, action Action, ctx AttendanceContext) (bool, error) {
	p, err := e.lookup(ModuleAttendance, role, action)
	if err != nil {
		return false, err
	}
	return ownedDecision(p, role, action, ctx.IsOwnResource), nil
}

// CanPerformTimetrackerAction decides time-tracking actions.
func (e *Engine) CanPerformTimetrackerAction(role Role, action Action, ctx TimetrackerContext) (bool, error) {
	p, err := e.lookup(ModuleTimetracker, role, action)
	if err != nil {
		return false, err
	}
	return ownedDecision(p, role, action, ctx.IsOwnResource), nil
}

func ownedDecision(p Policy, role Role, action Action, own bool) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true
	case RoleHR:
		return p.grants(action, own, false)
	case RoleEmployee, RoleClient:
		return own && p.grants(action, true, false)
	}
	return false
}

// CanPerformLeaveAction decides leave actions. Below admin, the leave's
// current status must also accept the action: approved leaves are immutable
// and every terminal status is read-only.
func (e *Engine) CanPerformLeaveAction(role Role, action Action, ctx LeaveContext) (bool, error) {
	p, err := e.lookup(ModuleLeave, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleHR:
		return ctx.Status.Accepts(action) && p.grants(action, ctx.IsOwnResource, false), nil
	case RoleEmployee, RoleClient:
		if !ctx.IsOwnResource || !ctx.Status.Accepts(action) {
			return false, nil
		}
		return p.grants(action, true, false), nil
	}
	return false, nil
}

// CanPerformChatAction decides chat actions. Employees and clients must be
// members of the chat (except to start one) and may only change or remove
// their own messages.
func (e *Engine) CanPerformChatAction(role Role, action Action, ctx ChatContext) (bool, error) {
	p, err := e.lookup(ModuleChat, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleHR:
		return p.grants(action, ctx.IsOwnMessage, ctx.IsMember), nil
	case RoleEmployee, RoleClient:
		if action != ActionCreate && !ctx.IsMember {
			return false, nil
		}
		if (action == ActionUpdate || action == ActionDelete) && !ctx.IsOwnMessage {
			return false, nil
		}
		return p.grants(action, ctx.IsOwnMessage, ctx.IsMember), nil
	}
	return false, nil
}

// CanPerformMessageAction decides actions on a single chat message.
func (e *Engine) CanPerformMessageAction(role Role, action Action, ctx MessageContext) (bool, error) {
	allowed, err := e.subActions(SubMessage, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleHR:
		return slices.Contains(allowed, action), nil
	case RoleEmployee, RoleClient:
		if !ctx.IsMember {
			return false, nil
		}
		if (action == ActionUpdate || action == ActionDelete) && !ctx.IsSender {
			return false, nil
		}
		return slices.Contains(allowed, action), nil
	}
	return false, nil
}
