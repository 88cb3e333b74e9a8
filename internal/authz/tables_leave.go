package authz

func leavePolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"apply", "view-all", "edit", "delete", "approve", "reject", "cancel", "export", "manage-policies"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"apply", "view-all", "edit", "delete", "approve", "reject", "cancel", "export", "manage-policies"},
			Fields: FieldPermissions{
				CanEdit:    []string{"type", "startDate", "endDate", "duration", "totalDays", "totalHours", "status", "reviewedBy", "reviewedAt", "reviewNote", "isEmergency"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"create", "read", "update", "approve", "export"},
			Verbs:   []Action{"apply", "view-all", "edit", "approve", "reject", "cancel", "export"},
			Fields: FieldPermissions{
				CanEdit:    []string{"status", "reviewedBy", "reviewedAt", "reviewNote", "totalDays", "totalHours"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleEmployee: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"apply", "view-own", "edit-own", "delete-own", "cancel-own"},
			Fields: FieldPermissions{
				CanEdit:    []string{"type", "startDate", "endDate", "duration", "reason", "attachments", "isEmergency", "contactDuringLeave", "delegatedTo", "delegationNotes"},
				CanView:    []string{"employeeId", "type", "startDate", "endDate", "duration", "totalDays", "status", "reason", "reviewNote", "attachments", "isEmergency"},
				Restricted: []string{"reviewedBy", "reviewedAt"},
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

func leaveTypes() map[Role][]string {
	all := []string{"vacation", "sick", "personal", "maternity", "paternity", "bereavement", "emergency", "other"}
	return map[Role][]string{
		RoleSuperAdmin: all,
		RoleAdmin:      all,
		RoleHR:         all,
		RoleEmployee:   {"vacation", "sick", "personal", "emergency"},
		RoleClient:     {},
	}
}

func leavePolicyActions() map[Role][]Action {
	return map[Role][]Action{
		RoleSuperAdmin: {"create", "read", "update", "delete"},
		RoleAdmin:      {"create", "read", "update", "delete"},
		RoleHR:         {"read"},
		RoleEmployee:   {},
		RoleClient:     {},
	}
}
