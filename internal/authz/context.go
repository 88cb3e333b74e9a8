package authz

// Context carries the request-time facts a module needs beyond the role
// tables. It is implemented only by the typed contexts in this file and is
// always recomputed from current data before a decision.
type Context interface {
	Module() Module
	sealed()
}

// ProfileContext describes the profile being acted on.
type ProfileContext struct {
	IsOwnResource bool
	// TargetRole is the current role of the profile owner.
	TargetRole Role
	// RequestedRole is set for role changes.
	RequestedRole Role
}

// ProjectContext describes the actor's relationship to a project.
type ProjectContext struct {
	IsMember bool
}

// TaskContext describes the actor's relationship to a task.
type TaskContext struct {
	// IsMember is membership of the task's project.
	IsMember   bool
	IsAssigned bool
	// IsOwnTask means the actor created the task.
	IsOwnTask bool
}

// AttendanceContext describes an attendance record.
type AttendanceContext struct {
	IsOwnResource bool
}

// LeaveContext describes a leave request. An empty Status means the leave
// does not exist yet.
type LeaveContext struct {
	IsOwnResource bool
	Status        LeaveStatus
}

// ChatContext describes the actor's relationship to a chat and, for
// message-level actions, to the message.
type ChatContext struct {
	IsMember     bool
	IsOwnMessage bool
}

// TimetrackerContext describes a tracked session.
type TimetrackerContext struct {
	IsOwnResource bool
}

// MessageContext describes a single chat message.
type MessageContext struct {
	IsMember bool
	IsSender bool
}

func (ProfileContext) Module() Module     { return ModuleProfile }
func (ProjectContext) Module() Module     { return ModuleProject }
func (TaskContext) Module() Module        { return ModuleTask }
func (AttendanceContext) Module() Module  { return ModuleAttendance }
func (LeaveContext) Module() Module       { return ModuleLeave }
func (ChatContext) Module() Module        { return ModuleChat }
func (TimetrackerContext) Module() Module { return ModuleTimetracker }

func (ProfileContext) sealed()     {}
func (ProjectContext) sealed()     {}
func (TaskContext) sealed()        {}
func (AttendanceContext) sealed()  {}
func (LeaveContext) sealed()       {}
func (ChatContext) sealed()        {}
func (TimetrackerContext) sealed() {}
