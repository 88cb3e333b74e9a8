package authz

func taskPolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"create", "view-all", "edit", "delete", "assign", "reassign", "export", "add-comments", "log-time"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"create", "view-all", "edit", "delete", "assign", "reassign", "export", "add-comments", "log-time"},
			Fields: FieldPermissions{
				CanEdit:    []string{"title", "description", "status", "priority", "assignedTo", "dueDate", "estimatedHours", "dependencies", "tags", "attachments"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"read", "export"},
			Verbs:   []Action{"view-all", "export"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"title", "description", "status", "priority", "dueDate", "progress", "tags"},
				Restricted: []string{"estimatedHours", "actualHours", "assignedTo", "createdBy"},
			},
		},
		RoleEmployee: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"view-assigned", "edit-assigned", "add-comments", "log-time", "update-progress"},
			Fields: FieldPermissions{
				CanEdit:    []string{"status", "progress", "actualHours", "comments", "timeLogs", "attachments"},
				CanView:    []string{"title", "description", "status", "priority", "assignedTo", "dueDate", "estimatedHours", "progress", "tags", "comments"},
				Restricted: []string{"createdBy"},
			},
		},
		RoleClient: {
			Actions: []Action{"read"},
			Verbs:   []Action{"view-assigned", "add-comments"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"title", "description", "status", "priority", "dueDate", "progress", "tags"},
				Restricted: []string{"estimatedHours", "actualHours", "assignedTo", "createdBy", "comments", "timeLogs"},
			},
		},
	}
}

func taskCommentActions() map[Role][]Action {
	return map[Role][]Action{
		RoleSuperAdmin: {"create", "read", "update", "delete"},
		RoleAdmin:      {"create", "read", "update", "delete"},
		RoleHR:         {"read"},
		RoleEmployee:   {"create", "read", "update", "delete"},
		RoleClient:     {"create", "read"},
	}
}
