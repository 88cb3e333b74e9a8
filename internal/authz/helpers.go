package authz

import (
	"fmt"
	"slices"
)

func checkRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return nil
}

// CanUseLeaveType reports whether role may file a leave of the given type.
func (e *Engine) CanUseLeaveType(role Role, leaveType string) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	return slices.Contains(e.tables.LeaveTypes[role], leaveType), nil
}

// CanManageLeavePolicies decides actions on leave policy definitions.
func (e *Engine) CanManageLeavePolicies(role Role, action Action) (bool, error) {
	allowed, err := e.subActions(SubLeavePolicy, role, action)
	if err != nil {
		return false, err
	}
	return slices.Contains(allowed, action), nil
}

// CanViewLeaveBalance reports whether role may see a leave balance.
func (e *Engine) CanViewLeaveBalance(role Role, isOwn bool) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	return role.privileged() || (role == RoleEmployee && isOwn), nil
}

// CanViewProjectBudget reports whether role may see project budgets.
func (e *Engine) CanViewProjectBudget(role Role) (bool, error) {
	return e.CanPerformProjectAction(role, ActionViewBudget, ProjectContext{IsMember: true})
}

// CanManageProjectMembers reports whether role may change project membership.
func (e *Engine) CanManageProjectMembers(role Role) (bool, error) {
	return e.CanPerformProjectAction(role, ActionManageMembers, ProjectContext{IsMember: true})
}

// CanPerformProjectMemberAction decides actions on a project's member list.
func (e *Engine) CanPerformProjectMemberAction(role Role, action Action) (bool, error) {
	allowed, err := e.subActions(SubProjectMember, role, action)
	if err != nil {
		return false, err
	}
	return slices.Contains(allowed, action), nil
}

// CanAssignTasks reports whether role may assign tasks to others.
func (e *Engine) CanAssignTasks(role Role) (bool, error) {
	return e.CanPerformTaskAction(role, ActionAssign, TaskContext{IsMember: true})
}

// CanViewTimeLogs reports whether role may read a task's time logs.
func (e *Engine) CanViewTimeLogs(role Role, isAssigned bool) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return true, nil
	case RoleEmployee:
		return isAssigned, nil
	}
	return false, nil
}

// CanPerformTaskCommentAction decides actions on task comments. Employees and
// clients only change or remove their own comments.
func (e *Engine) CanPerformTaskCommentAction(role Role, action Action, isOwnComment bool) (bool, error) {
	allowed, err := e.subActions(SubTaskComment, role, action)
	if err != nil {
		return false, err
	}
	switch role {
	case RoleEmployee, RoleClient:
		if (action == ActionUpdate || action == ActionDelete) && !isOwnComment {
			return false, nil
		}
	}
	return slices.Contains(allowed, action), nil
}

// CanAccessChatType reports whether role may open chats of chatType.
func (e *Engine) CanAccessChatType(role Role, chatType string) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	return slices.Contains(e.tables.ChatTypes[role], chatType), nil
}

// CanViewScreenshots reports whether role may see session screenshots.
func (e *Engine) CanViewScreenshots(role Role, isOwn bool) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	return role.privileged() || (role == RoleEmployee && isOwn), nil
}

// CanApproveSessions reports whether role may approve tracked sessions.
func (e *Engine) CanApproveSessions(role Role) (bool, error) {
	return e.CanPerformTimetrackerAction(role, ActionApprove, TimetrackerContext{})
}

// CanViewProductivityMetrics reports whether role may see activity metrics.
func (e *Engine) CanViewProductivityMetrics(role Role, isOwn bool) (bool, error) {
	if err := checkRole(role); err != nil {
		return false, err
	}
	return role.privileged() || (role == RoleEmployee && isOwn), nil
}

// CanPerformScreenshotAction decides actions on session screenshots.
func (e *Engine) CanPerformScreenshotAction(role Role, action Action, isOwn bool) (bool, error) {
	allowed, err := e.subActions(SubScreenshot, role, action)
	if err != nil {
		return false, err
	}
	if role == RoleEmployee && !isOwn {
		return false, nil
	}
	return slices.Contains(allowed, action), nil
}
