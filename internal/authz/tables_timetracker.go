package authz

func timetrackerPolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"start-session", "stop-session", "view-all", "edit", "delete", "approve", "reject", "export", "view-screenshots"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"start-session", "stop-session", "view-all", "edit", "delete", "approve", "reject", "export", "view-screenshots"},
			Fields: FieldPermissions{
				CanEdit:    []string{"title", "description", "projectId", "status", "notes", "isApproved", "approvedBy", "approvedAt", "rejectionReason"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"read", "update", "approve", "export"},
			Verbs:   []Action{"view-all", "approve", "reject", "export"},
			Fields: FieldPermissions{
				CanEdit:    []string{"isApproved", "approvedBy", "approvedAt", "rejectionReason"},
				CanView:    []string{"employeeId", "projectId", "title", "startTime", "endTime", "totalHours", "productiveHours", "averageActivityLevel", "isApproved"},
				Restricted: []string{"screenshots", "activityLevels", "deviceInfo", "hourlyRate", "totalEarnings"},
			},
		},
		RoleEmployee: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"start-session", "stop-session", "view-own", "edit-own", "delete-own"},
			Fields: FieldPermissions{
				CanEdit:    []string{"title", "description", "projectId", "notes"},
				CanView:    []string{"employeeId", "projectId", "title", "description", "startTime", "endTime", "totalHours", "productiveHours", "averageActivityLevel", "status", "isApproved"},
				Restricted: []string{"screenshots", "activityLevels", "deviceInfo", "hourlyRate", "totalEarnings", "approvedBy", "approvedAt"},
			},
		},
		RoleClient: {
			Actions: []Action{},
			Verbs:   []Action{},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{},
				Restricted: []string{"*"},
			},
		},
	}
}

func screenshotActions() map[Role][]Action {
	return map[Role][]Action{
		RoleSuperAdmin: {"create", "read", "update", "delete"},
		RoleAdmin:      {"create", "read", "update", "delete"},
		RoleHR:         {"read"},
		RoleEmployee:   {"create", "read"},
		RoleClient:     {},
	}
}
