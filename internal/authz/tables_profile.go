package authz

func profilePolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "export"},
			Verbs:   []Action{"create-user", "view-all", "edit", "delete", "export", "change-role", "activate-deactivate"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "export"},
			Verbs:   []Action{"create-user", "view-all", "edit", "delete", "export", "change-role", "activate-deactivate"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "email", "phone", "role", "employeeId", "emailVerified", "isActive", "bio", "department", "position", "dateOfJoining", "dateOfBirth", "address", "emergencyContact", "skills", "certifications", "socialLinks"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"create", "read", "update", "export"},
			Verbs:   []Action{"view-all", "edit", "export"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "phone", "employeeId", "department", "position", "dateOfJoining", "dateOfBirth", "address", "emergencyContact", "skills", "certifications"},
				CanView:    []string{"name", "email", "phone", "role", "employeeId", "department", "position", "dateOfJoining", "dateOfBirth", "address", "emergencyContact", "skills", "certifications", "socialLinks"},
				Restricted: []string{"emailVerified", "isActive"},
			},
		},
		RoleEmployee: {
			Actions: []Action{"read", "update"},
			Verbs:   []Action{"view-own", "edit-own"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "phone", "bio", "address", "emergencyContact", "skills", "socialLinks"},
				CanView:    []string{"name", "email", "phone", "role", "employeeId", "profileImage", "bio", "department", "position", "dateOfJoining", "dateOfBirth", "address", "emergencyContact", "skills", "certifications", "socialLinks"},
				Restricted: []string{"emailVerified", "isActive", "dateOfJoining", "employeeId"},
			},
		},
		RoleClient: {
			Actions: []Action{"read", "update"},
			Verbs:   []Action{"view-own", "edit-own"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "phone", "address", "socialLinks"},
				CanView:    []string{"name", "email", "phone", "role", "profileImage", "address", "socialLinks"},
				Restricted: []string{"employeeId", "department", "position", "dateOfJoining", "dateOfBirth", "emergencyContact", "skills", "certifications", "emailVerified", "isActive"},
			},
		},
	}
}
