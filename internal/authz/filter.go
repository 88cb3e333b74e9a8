package authz

import (
	"fmt"
	"slices"
	"sort"
)

// IdentityField is always kept by FilterForView and never accepted by
// FilterForEdit.
const IdentityField = "id"

// Document is a resource or patch in its wire shape.
type Document = map[string]any

// Schema is the explicit, ordered field list for a resource. Fields not
// listed here are never projected, whatever a document carries.
type Schema struct {
	Resource Resource
	Fields   []string
}

// Has reports whether field is part of the schema.
func (s Schema) Has(field string) bool {
	return slices.Contains(s.Fields, field)
}

var schemas = map[Resource]Schema{
	ResourceProfile: {Resource: ResourceProfile, Fields: []string{
		"name", "email", "role", "phone", "profileImage", "employeeId", "emailVerified", "isActive",
		"bio", "department", "position", "dateOfJoining", "dateOfBirth", "address",
		"emergencyContact", "skills", "certifications", "socialLinks",
	}},
	ResourceProject: {Resource: ResourceProject, Fields: []string{
		"name", "description", "status", "priority", "startDate", "dueDate", "estimatedHours",
		"actualHours", "budget", "spentBudget", "progress", "createdBy", "clientId", "teamMembers",
		"tags", "attachments", "isArchived",
	}},
	ResourceTask: {Resource: ResourceTask, Fields: []string{
		"title", "description", "projectId", "status", "priority", "assignedTo", "createdBy",
		"dueDate", "completedAt", "estimatedHours", "actualHours", "progress", "dependencies",
		"tags", "attachments", "isArchived", "comments", "timeLogs",
	}},
	ResourceAttendance: {Resource: ResourceAttendance, Fields: []string{
		"employeeId", "date", "checkIn", "checkOut", "checkInLocation", "checkOutLocation",
		"checkInNote", "checkOutNote", "status", "shift", "breaks", "namaz", "totalHours",
		"totalBreakMinutes", "totalNamazMinutes", "workingHours", "overtimeHours", "isRemote",
		"notes", "approvedBy", "approvedAt",
	}},
	ResourceLeave: {Resource: ResourceLeave, Fields: []string{
		"employeeId", "type", "startDate", "endDate", "duration", "totalDays", "totalHours",
		"reason", "status", "reviewedBy", "reviewedAt", "reviewNote", "attachments",
		"isEmergency", "contactDuringLeave", "delegatedTo", "delegationNotes",
	}},
	ResourceChat: {Resource: ResourceChat, Fields: []string{
		"name", "description", "type", "isPrivate", "createdBy", "members", "avatar", "topic",
		"pinnedMessages", "lastMessage", "lastActivity", "isArchived", "archivedBy", "archivedAt",
	}},
	ResourceMessage: {Resource: ResourceMessage, Fields: []string{
		"content", "senderId", "chatId", "replyToId", "attachments", "reactions", "status",
		"readBy", "isDeleted", "deletedAt", "deletedBy", "isEdited", "editedAt", "linkPreview",
		"mentionedUsers",
	}},
	ResourceTimetracker: {Resource: ResourceTimetracker, Fields: []string{
		"employeeId", "projectId", "title", "description", "startTime", "endTime",
		"pausedDuration", "status", "screenshots", "activityLevels", "tasksCompleted",
		"totalHours", "productiveHours", "idleHours", "averageActivityLevel", "totalKeystrokes",
		"totalMouseClicks", "notes", "lastActive", "isApproved", "approvedBy", "approvedAt",
		"rejectionReason", "hourlyRate", "totalEarnings", "deviceInfo", "isManual",
	}},
}

// SchemaFor returns the schema of resource.
func SchemaFor(resource Resource) (Schema, error) {
	s, ok := schemas[resource]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return Schema{Resource: s.Resource, Fields: slices.Clone(s.Fields)}, nil
}

// ModuleOf maps a resource to the module whose actions govern it.
func ModuleOf(resource Resource) (Module, error) {
	switch resource {
	case ResourceMessage:
		return ModuleChat, nil
	case ResourceProfile, ResourceProject, ResourceTask, ResourceAttendance,
		ResourceLeave, ResourceChat, ResourceTimetracker:
		return Module(resource), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, resource)
}

func (e *Engine) fieldPermissions(resource Resource, role Role) (FieldPermissions, error) {
	if !role.Valid() {
		return FieldPermissions{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if resource == ResourceMessage {
		return e.tables.MessageFields[role], nil
	}
	if _, ok := schemas[resource]; !ok {
		return FieldPermissions{}, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	p, err := e.policy(Module(resource), role)
	if err != nil {
		return FieldPermissions{}, err
	}
	return p.Fields, nil
}

// FieldPermissionsFor returns a copy of the field classification for role.
func (e *Engine) FieldPermissionsFor(resource Resource, role Role) (FieldPermissions, error) {
	f, err := e.fieldPermissions(resource, role)
	if err != nil {
		return FieldPermissions{}, err
	}
	return FieldPermissions{
		CanEdit:    slices.Clone(f.CanEdit),
		CanView:    slices.Clone(f.CanView),
		Restricted: slices.Clone(f.Restricted),
	}, nil
}

// CanViewField reports whether role may see field on resource. Restricted
// is checked first, then wildcard, then explicit membership.
func (e *Engine) CanViewField(resource Resource, role Role, field string) (bool, error) {
	f, err := e.fieldPermissions(resource, role)
	if err != nil {
		return false, err
	}
	return f.views(field), nil
}

// CanEditField reports whether role may change field on resource. Only
// superadmin, admin and hr may edit resources they do not own.
func (e *Engine) CanEditField(resource Resource, role Role, field string, isOwn bool) (bool, error) {
	f, err := e.fieldPermissions(resource, role)
	if err != nil {
		return false, err
	}
	if !isOwn && !role.privileged() {
		return false, nil
	}
	return f.edits(field), nil
}

// FilterForView projects doc down to the fields role may see. The identity
// field is kept whenever doc carries it; absent fields stay absent.
func (e *Engine) FilterForView(resource Resource, doc Document, role Role, isOwn bool) (Document, error) {
	f, err := e.fieldPermissions(resource, role)
	if err != nil {
		return nil, err
	}
	out := make(Document, len(doc))
	if id, ok := doc[IdentityField]; ok {
		out[IdentityField] = id
	}
	for _, field := range schemas[resource].Fields {
		v, ok := doc[field]
		if !ok || !f.views(field) {
			continue
		}
		out[field] = v
	}
	return out, nil
}

// EditResult is the outcome of FilterForEdit.
type EditResult struct {
	Accepted Document
	// Dropped lists rejected keys in sorted order.
	Dropped []string
}

// FilterForEdit keeps the keys of patch that role may apply and reports the
// rest as dropped. Ownership is decided once for the whole patch. A "role"
// key is additionally subject to CanChangeUserRole.
func (e *Engine) FilterForEdit(resource Resource, patch Document, role Role, isOwn bool) (EditResult, error) {
	f, err := e.fieldPermissions(resource, role)
	if err != nil {
		return EditResult{}, err
	}
	res := EditResult{Accepted: make(Document, len(patch))}
	mayEdit := isOwn || role.privileged()
	schema := schemas[resource]
	for key, value := range patch {
		if !mayEdit || key == IdentityField || !schema.Has(key) || !f.edits(key) {
			res.Dropped = append(res.Dropped, key)
			continue
		}
		if resource == ResourceProfile && key == "role" {
			requested, ok := requestedRole(role, value)
			if !ok {
				res.Dropped = append(res.Dropped, key)
				continue
			}
			value = string(requested)
		}
		res.Accepted[key] = value
	}
	sort.Strings(res.Dropped)
	return res, nil
}

func requestedRole(acting Role, value any) (Role, bool) {
	raw, ok := value.(string)
	if !ok {
		return "", false
	}
	requested, err := ParseRole(raw)
	if err != nil {
		return "", false
	}
	return requested, CanChangeUserRole(acting, requested)
}
