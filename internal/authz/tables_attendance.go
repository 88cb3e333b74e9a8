package authz

func attendancePolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"check-in", "check-out", "edit", "delete", "approve", "export", "view-all"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "approve", "export"},
			Verbs:   []Action{"check-in", "check-out", "edit", "delete", "approve", "export", "view-all"},
			Fields: FieldPermissions{
				CanEdit:    []string{"checkIn", "checkOut", "status", "breaks", "namaz", "notes", "approvedBy", "approvedAt", "isRemote"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"create", "read", "update", "approve", "export"},
			Verbs:   []Action{"edit", "approve", "export", "view-all"},
			Fields: FieldPermissions{
				CanEdit:    []string{"status", "breaks", "namaz", "notes", "approvedBy", "approvedAt"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleEmployee: {
			Actions: []Action{"create", "read", "update"},
			Verbs:   []Action{"check-in", "check-out", "edit-own"},
			Fields: FieldPermissions{
				CanEdit:    []string{"checkIn", "checkOut", "checkInNote", "checkOutNote", "breaks", "namaz", "notes", "isRemote"},
				CanView:    []string{"employeeId", "date", "checkIn", "checkOut", "status", "shift", "breaks", "namaz", "totalHours", "isRemote"},
				Restricted: []string{"approvedBy", "approvedAt", "checkInLocation", "checkOutLocation"},
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
