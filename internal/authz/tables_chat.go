package authz

func chatPolicies() map[Role]Policy {
	return map[Role]Policy{
		RoleSuperAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "export"},
			Verbs:   []Action{"create-chat", "delete-chat", "add-members", "remove-members", "change-roles", "pin-messages", "mute-members", "archive-chat"},
			Fields: FieldPermissions{
				CanEdit:    []string{"*"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleAdmin: {
			Actions: []Action{"create", "read", "update", "delete", "export"},
			Verbs:   []Action{"create-chat", "delete-chat", "add-members", "remove-members", "change-roles", "pin-messages", "mute-members", "archive-chat"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "description", "type", "isPrivate", "members", "avatar", "topic", "pinnedMessages"},
				CanView:    []string{"*"},
				Restricted: []string{},
			},
		},
		RoleHR: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"create-chat", "add-members", "remove-members", "pin-messages", "mute-members"},
			Fields: FieldPermissions{
				CanEdit:    []string{"name", "description", "members", "avatar", "topic"},
				CanView:    []string{"*"},
				Restricted: []string{"archivedBy", "archivedAt"},
			},
		},
		RoleEmployee: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"leave-chat", "mute-chat"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"name", "description", "type", "avatar", "topic", "members", "lastMessage", "lastActivity"},
				Restricted: []string{"archivedBy", "archivedAt", "createdBy"},
			},
		},
		RoleClient: {
			Actions: []Action{"create", "read", "update", "delete"},
			Verbs:   []Action{"leave-chat", "mute-chat"},
			Fields: FieldPermissions{
				CanEdit:    []string{},
				CanView:    []string{"name", "description", "type", "avatar", "topic", "lastMessage", "lastActivity"},
				Restricted: []string{"members", "archivedBy", "archivedAt", "createdBy", "pinnedMessages"},
			},
		},
	}
}

func messageFieldPermissions() map[Role]FieldPermissions {
	return map[Role]FieldPermissions{
		RoleSuperAdmin: {
			CanEdit:    []string{"*"},
			CanView:    []string{"*"},
			Restricted: []string{},
		},
		RoleAdmin: {
			CanEdit:    []string{"content", "attachments", "reactions", "status"},
			CanView:    []string{"*"},
			Restricted: []string{},
		},
		RoleHR: {
			CanEdit:    []string{"content", "attachments", "reactions"},
			CanView:    []string{"*"},
			Restricted: []string{"readBy", "deletedBy", "deletedAt"},
		},
		RoleEmployee: {
			CanEdit:    []string{"content", "attachments", "reactions"},
			CanView:    []string{"content", "senderId", "attachments", "reactions", "status", "readBy", "isEdited"},
			Restricted: []string{"deletedBy", "deletedAt"},
		},
		RoleClient: {
			CanEdit:    []string{"content", "attachments", "reactions"},
			CanView:    []string{"content", "senderId", "attachments", "reactions", "status"},
			Restricted: []string{"readBy", "deletedBy", "deletedAt", "mentionedUsers"},
		},
	}
}

func messageActions() map[Role][]Action {
	return map[Role][]Action{
		RoleSuperAdmin: {"create", "read", "update", "delete", "export"},
		RoleAdmin:      {"create", "read", "update", "delete", "export"},
		RoleHR:         {"create", "read", "update", "delete"},
		RoleEmployee:   {"create", "read", "update", "delete"},
		RoleClient:     {"create", "read", "update", "delete"},
	}
}

func chatTypes() map[Role][]string {
	return map[Role][]string{
		RoleSuperAdmin: {"direct", "group", "channel"},
		RoleAdmin:      {"direct", "group", "channel"},
		RoleHR:         {"direct", "group"},
		RoleEmployee:   {"direct", "group"},
		RoleClient:     {"direct", "group"},
	}
}
