package authz

import (
	"fmt"
	"slices"
	"strings"
)

// Module identifies a permission domain. Modules never share tables.
type Module string

const (
	ModuleProfile     Module = "profile"
	ModuleProject     Module = "project"
	ModuleTask        Module = "task"
	ModuleAttendance  Module = "attendance"
	ModuleLeave       Module = "leave"
	ModuleChat        Module = "chat"
	ModuleTimetracker Module = "timetracker"
)

// Modules lists every registered module.
func Modules() []Module {
	return []Module{
		ModuleProfile,
		ModuleProject,
		ModuleTask,
		ModuleAttendance,
		ModuleLeave,
		ModuleChat,
		ModuleTimetracker,
	}
}

// ParseModule converts raw input into a Module.
func ParseModule(raw string) (Module, error) {
	m := Module(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(Modules(), m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, raw)
	}
	return m, nil
}

// Resource identifies a document shape that can be field-filtered. Every
// module is a resource; chat messages are the only resource without a module
// of their own.
type Resource string

const (
	ResourceProfile     Resource = "profile"
	ResourceProject     Resource = "project"
	ResourceTask        Resource = "task"
	ResourceAttendance  Resource = "attendance"
	ResourceLeave       Resource = "leave"
	ResourceChat        Resource = "chat"
	ResourceMessage     Resource = "message"
	ResourceTimetracker Resource = "timetracker"
)

// Resources lists every filterable resource.
func Resources() []Resource {
	return []Resource{
		ResourceProfile,
		ResourceProject,
		ResourceTask,
		ResourceAttendance,
		ResourceLeave,
		ResourceChat,
		ResourceMessage,
		ResourceTimetracker,
	}
}

// SubResource names the secondary action tables hanging off a module.
type SubResource string

const (
	SubMessage       SubResource = "message"
	SubTaskComment   SubResource = "task-comment"
	SubProjectMember SubResource = "project-member"
	SubScreenshot    SubResource = "screenshot"
	SubLeavePolicy   SubResource = "leave-policy"
)

func subResources() []SubResource {
	return []SubResource{SubMessage, SubTaskComment, SubProjectMember, SubScreenshot, SubLeavePolicy}
}

// Action is a verb an actor may attempt on a module's resources.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionExport  Action = "export"

	ActionReject             Action = "reject"
	ActionCancel             Action = "cancel"
	ActionApply              Action = "apply"
	ActionForceEdit          Action = "force-edit"
	ActionHardDelete         Action = "hard-delete"
	ActionChangeRole         Action = "change-role"
	ActionActivateDeactivate Action = "activate-deactivate"
	ActionViewAll            Action = "view-all"
	ActionManageMembers      Action = "manage-members"
	ActionViewBudget         Action = "view-budget"
	ActionAssign             Action = "assign"
	ActionAddComments        Action = "add-comments"
	ActionLogTime            Action = "log-time"
	ActionUpdateProgress     Action = "update-progress"
	ActionCheckIn            Action = "check-in"
	ActionCheckOut           Action = "check-out"
	ActionViewScreenshots    Action = "view-screenshots"
	ActionExpire             Action = "expire"
)

const (
	ownSuffix      = "-own"
	assignedSuffix = "-assigned"
)

// Wildcard matches every field in a FieldPermissions list.
const Wildcard = "*"

// FieldPermissions classifies fields for one role on one resource.
// Restricted always wins over CanView and CanEdit.
type FieldPermissions struct {
	CanEdit    []string `json:"canEdit"`
	CanView    []string `json:"canView"`
	Restricted []string `json:"restricted"`
}

func (f FieldPermissions) restricts(field string) bool {
	return slices.Contains(f.Restricted, Wildcard) || slices.Contains(f.Restricted, field)
}

func (f FieldPermissions) views(field string) bool {
	if f.restricts(field) {
		return false
	}
	return slices.Contains(f.CanView, Wildcard) || slices.Contains(f.CanView, field)
}

func (f FieldPermissions) edits(field string) bool {
	if f.restricts(field) {
		return false
	}
	return slices.Contains(f.CanEdit, Wildcard) || slices.Contains(f.CanEdit, field)
}

// Policy is the entry for one (module, role) pair.
type Policy struct {
	Actions []Action         `json:"actions"`
	Verbs   []Action         `json:"verbs"`
	Fields  FieldPermissions `json:"fields"`
}

// grants reports whether the policy lists action directly, or through one of
// its scoped verb forms when the actor owns or is assigned to the resource.
func (p Policy) grants(action Action, owns, assigned bool) bool {
	if slices.Contains(p.Actions, action) || slices.Contains(p.Verbs, action) {
		return true
	}
	if owns && slices.Contains(p.Verbs, action+ownSuffix) {
		return true
	}
	return assigned && slices.Contains(p.Verbs, action+assignedSuffix)
}

// Tables is the complete policy data set consumed by an Engine.
type Tables struct {
	Modules       map[Module]map[Role]Policy
	MessageFields map[Role]FieldPermissions
	SubActions    map[SubResource]map[Role][]Action
	LeaveTypes    map[Role][]string
	ChatTypes     map[Role][]string
}

// DefaultTables returns the portal's policy data.
func DefaultTables() Tables {
	return Tables{
		Modules: map[Module]map[Role]Policy{
			ModuleProfile:     profilePolicies(),
			ModuleProject:     projectPolicies(),
			ModuleTask:        taskPolicies(),
			ModuleAttendance:  attendancePolicies(),
			ModuleLeave:       leavePolicies(),
			ModuleChat:        chatPolicies(),
			ModuleTimetracker: timetrackerPolicies(),
		},
		MessageFields: messageFieldPermissions(),
		SubActions: map[SubResource]map[Role][]Action{
			SubMessage:       messageActions(),
			SubTaskComment:   taskCommentActions(),
			SubProjectMember: projectMemberActions(),
			SubScreenshot:    screenshotActions(),
			SubLeavePolicy:   leavePolicyActions(),
		},
		LeaveTypes: leaveTypes(),
		ChatTypes:  chatTypes(),
	}
}
