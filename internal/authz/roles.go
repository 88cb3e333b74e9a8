// Package authz implements the portal's role-based action and field
// permission engine. Policy lives in literal per-module tables; the Engine
// evaluates those tables against a typed, per-request resource context.
package authz

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a fixed actor category.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleHR         Role = "hr"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
)

// Display metadata only. Decisions never compare ranks.
var roleRanks = map[Role]int{
	RoleSuperAdmin: 5,
	RoleAdmin:      4,
	RoleHR:         3,
	RoleEmployee:   2,
	RoleClient:     1,
}

var roleDescriptions = map[Role]string{
	RoleSuperAdmin: "Full system access and control",
	RoleAdmin:      "Administrative access with user management",
	RoleHR:         "Human resources management and reporting",
	RoleEmployee:   "Standard employee access",
	RoleClient:     "Limited client access to relevant projects",
}

var titleCaser = cases.Title(language.English)

// Roles returns every role ordered from highest to lowest rank.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleHR, RoleEmployee, RoleClient}
}

// ParseRole converts raw input into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the display rank of the role, zero when unknown.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Description returns a human readable summary of the role.
func (r Role) Description() string {
	return roleDescriptions[r]
}

// Title returns the display name, e.g. "Superadmin" or "HR".
func (r Role) Title() string {
	if r == RoleHR {
		return "HR"
	}
	return titleCaser.String(string(r))
}

func (r Role) String() string { return string(r) }

// privileged roles may act on resources they do not own.
func (r Role) privileged() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleHR
}

// CanChangeUserRole reports whether acting may assign requested to a user.
func CanChangeUserRole(acting, requested Role) bool {
	switch acting {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return requested != RoleSuperAdmin
	default:
		return false
	}
}

// Capabilities is a flattened summary of what a role may do across modules.
type Capabilities struct {
	CanManageUsers        bool `json:"canManageUsers"`
	CanManageProjects     bool `json:"canManageProjects"`
	CanManageTasks        bool `json:"canManageTasks"`
	CanViewAllAttendance  bool `json:"canViewAllAttendance"`
	CanManageLeaves       bool `json:"canManageLeaves"`
	CanViewAllChats       bool `json:"canViewAllChats"`
	CanViewAllTimetracker bool `json:"canViewAllTimetracker"`
	CanExportData         bool `json:"canExportData"`
	CanManageSettings     bool `json:"canManageSettings"`
	CanDeleteData         bool `json:"canDeleteData"`
}

// CapabilitiesOf derives the capability summary for role by asking the
// evaluator unscoped questions (actor neither owns nor belongs to the target).
func (e *Engine) CapabilitiesOf(role Role) (Capabilities, error) {
	if !role.Valid() {
		return Capabilities{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	var (
		caps Capabilities
		err  error
	)
	check := func(dst *bool, fn func() (bool, error)) {
		if err != nil {
			return
		}
		*dst, err = fn()
	}
	check(&caps.CanManageUsers, func() (bool, error) {
		return e.CanPerformProfileAction(role, ActionChangeRole, ProfileContext{TargetRole: RoleEmployee, RequestedRole: RoleHR})
	})
	check(&caps.CanManageProjects, func() (bool, error) {
		return e.CanPerformProjectAction(role, ActionManageMembers, ProjectContext{})
	})
	check(&caps.CanManageTasks, func() (bool, error) {
		return e.CanPerformTaskAction(role, ActionAssign, TaskContext{})
	})
	check(&caps.CanViewAllAttendance, func() (bool, error) {
		return e.CanPerformAttendanceAction(role, ActionViewAll, AttendanceContext{})
	})
	check(&caps.CanManageLeaves, func() (bool, error) {
		return e.CanPerformLeaveAction(role, ActionApprove, LeaveContext{Status: LeavePending})
	})
	check(&caps.CanViewAllChats, func() (bool, error) {
		return e.CanPerformChatAction(role, ActionRead, ChatContext{})
	})
	check(&caps.CanViewAllTimetracker, func() (bool, error) {
		return e.CanPerformTimetrackerAction(role, ActionViewAll, TimetrackerContext{})
	})
	check(&caps.CanExportData, func() (bool, error) {
		return e.CanPerformProfileAction(role, ActionExport, ProfileContext{TargetRole: RoleEmployee})
	})
	check(&caps.CanDeleteData, func() (bool, error) {
		return e.CanPerformProfileAction(role, ActionDelete, ProfileContext{TargetRole: RoleEmployee})
	})
	// hard-delete is withheld from admin by the profile exceptions, which
	// leaves settings to superadmin.
	check(&caps.CanManageSettings, func() (bool, error) {
		return e.CanPerformProfileAction(role, ActionHardDelete, ProfileContext{TargetRole: RoleEmployee})
	})
	if err != nil {
		return Capabilities{}, err
	}
	return caps, nil
}
