package authz

func projectPolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"create", "view-all", "edit", "delete", "archive", "restore", "export", "manage-members", "view-budget"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"create", "view-all", "edit", "delete", "archive", "restore", "export", "manage-members", "view-budget"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "description", "status", "priority", "startDate", "dueDate", "estimatedHours", "budget", "teamMembers", "tags", "attachments"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"read", "export"},
			Verbs:   []Action{"view-all", "export"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"name", "description", "status", "priority", "startDate", "dueDate", "progress", "teamMembers", "tags"},
				Restricted: []string{"budget", "spentBudget", "estimatedHours", "actualHours"},
			},
		},
		RoleEmployee: {
			Actions: []Action{"read"},
			Verbs:   []Action{"view-assigned"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"name", "description", "status", "priority", "startDate", "dueDate", "progress", "teamMembers", "tags"},
				Restricted: []string{"budget", "spentBudget", "estimatedHours", "actualHours", "clientId"},
			},
		},
		RoleClient: {
			Actions: []Action{"read"},
			Verbs:   []Action{"view-assigned"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"name", "description", "status", "priority", "startDate", "dueDate", "progress", "tags"},
				Restricted: []string{"budget", "spentBudget", "estimatedHours", "actualHours", "teamMembers", "clientId", "createdBy"},
			},
		},
	}
}

func projectMemberActions() map[Role][]Action {
	return map[Role][]Action{
		RoleSuperAdmin: {"create", "read", "update", "delete"},
		RoleAdmin:      {"create", "read", "update", "delete"},
		RoleHR:         {"read"},
		RoleEmployee:   {"read"},
		RoleClient:     {"read"},
	}
}
