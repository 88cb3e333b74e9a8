package portal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/workdesk/portal/internal/authz"
	"github.com/workdesk/portal/internal/shared"
	"github.com/workdesk/portal/internal/store"
)

// subject is a loaded resource seen from one actor: the engine context plus
// the ownership flag used for field filtering.
type subject struct {
	ctx authz.Context
	own bool
}

func (h *Handler) subjectOf(ctx context.Context, actor shared.Actor, resource authz.Resource, doc authz.Document) (subject, error) {
	switch resource {
	case authz.ResourceProfile:
		own := stringField(doc, authz.IdentityField) == actor.ID
		target, _ := authz.ParseRole(stringField(doc, "role"))
		return subject{ctx: authz.ProfileContext{IsOwnResource: own, TargetRole: target}, own: own}, nil
	case authz.ResourceProject:
		return subject{
			ctx: authz.ProjectContext{IsMember: projectMember(doc, actor.ID)},
			own: stringField(doc, "createdBy") == actor.ID,
		}, nil
	case authz.ResourceTask:
		member, err := h.taskProjectMember(ctx, doc, actor.ID)
		if err != nil {
			return subject{}, err
		}
		tctx := authz.TaskContext{
			IsMember:   member,
			IsAssigned: slices.Contains(idsOf(doc["assignedTo"]), actor.ID),
			IsOwnTask:  stringField(doc, "createdBy") == actor.ID,
		}
		return subject{ctx: tctx, own: tctx.IsOwnTask || tctx.IsAssigned}, nil
	case authz.ResourceAttendance:
		own := stringField(doc, "employeeId") == actor.ID
		return subject{ctx: authz.AttendanceContext{IsOwnResource: own}, own: own}, nil
	case authz.ResourceLeave:
		own := stringField(doc, "employeeId") == actor.ID
		status, err := authz.ParseLeaveStatus(stringField(doc, "status"))
		if err != nil {
			return subject{}, fmt.Errorf("leave %s: %w", stringField(doc, authz.IdentityField), err)
		}
		return subject{ctx: authz.LeaveContext{IsOwnResource: own, Status: status}, own: own}, nil
	case authz.ResourceChat:
		// Chat-level ownership is authorship of the chat itself.
		own := stringField(doc, "createdBy") == actor.ID
		return subject{
			ctx: authz.ChatContext{IsMember: slices.Contains(idsOf(doc["members"]), actor.ID), IsOwnMessage: own},
			own: own,
		}, nil
	case authz.ResourceTimetracker:
		own := stringField(doc, "employeeId") == actor.ID
		return subject{ctx: authz.TimetrackerContext{IsOwnResource: own}, own: own}, nil
	}
	return subject{}, fmt.Errorf("%w: %q", authz.ErrUnknownResource, resource)
}

// taskProjectMember reports whether actor belongs to the task's project. A
// task without a project, or whose project is gone, has no members.
func (h *Handler) taskProjectMember(ctx context.Context, task authz.Document, actorID string) (bool, error) {
	projectID := stringField(task, "projectId")
	if projectID == "" {
		return false, nil
	}
	project, err := h.store.Get(ctx, string(authz.ResourceProject), projectID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load project %s: %w", projectID, err)
	}
	return projectMember(project, actorID), nil
}

func projectMember(project authz.Document, actorID string) bool {
	if actorID == "" {
		return false
	}
	if stringField(project, "createdBy") == actorID || stringField(project, "clientId") == actorID {
		return true
	}
	return slices.Contains(idsOf(project["teamMembers"]), actorID)
}

func leaveStatusOf(doc authz.Document) authz.LeaveStatus {
	status, err := authz.ParseLeaveStatus(stringField(doc, "status"))
	if err != nil {
		return ""
	}
	return status
}

func stringField(doc authz.Document, field string) string {
	s, _ := doc[field].(string)
	return s
}

// idsOf reads a reference list as stored in documents: a single id, a list of
// ids, or a list of objects carrying "id" or "user".
func idsOf(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case string:
				out = append(out, e)
			case map[string]any:
				if id, ok := e["id"].(string); ok {
					out = append(out, id)
				} else if id, ok := e["user"].(string); ok {
					out = append(out, id)
				}
			}
		}
		return out
	}
	return nil
}

func fieldNames(doc authz.Document) []string {
	names := make([]string, 0, len(doc))
	for k := range doc {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func insertSorted(list []string, v string) []string {
	i, found := slices.BinarySearch(list, v)
	if found {
		return list
	}
	return slices.Insert(list, i, v)
}
