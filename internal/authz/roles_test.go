package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/authz"
)

func TestParseRole(t *testing.T) {
	role, err := authz.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, role)

	_, err = authz.ParseRole("root")
	require.ErrorIs(t, err, authz.ErrUnknownRole)
	assert.True(t, authz.IsConfigError(err))
}

func TestRoleMetadata(t *testing.T) {
	ranks := map[authz.Role]int{}
	for _, r := range authz.Roles() {
		ranks[r] = r.Rank()
		assert.NotEmpty(t, r.Description())
	}
	assert.Equal(t, map[authz.Role]int{
		authz.RoleSuperAdmin: 5,
		authz.RoleAdmin:      4,
		authz.RoleHR:         3,
		authz.RoleEmployee:   2,
		authz.RoleClient:     1,
	}, ranks)

	assert.Equal(t, "Superadmin", authz.RoleSuperAdmin.Title())
	assert.Equal(t, "HR", authz.RoleHR.Title())
	assert.Equal(t, "Employee", authz.RoleEmployee.Title())
	assert.Equal(t, "Limited client access to relevant projects", authz.RoleClient.Description())
	assert.Zero(t, authz.Role("root").Rank())
}

func TestCanChangeUserRole(t *testing.T) {
	assert.False(t, authz.CanChangeUserRole(authz.RoleAdmin, authz.RoleSuperAdmin))
	assert.True(t, authz.CanChangeUserRole(authz.RoleAdmin, authz.RoleHR))
	assert.True(t, authz.CanChangeUserRole(authz.RoleSuperAdmin, authz.RoleSuperAdmin))
	assert.False(t, authz.CanChangeUserRole(authz.RoleHR, authz.RoleEmployee))
	assert.False(t, authz.CanChangeUserRole(authz.RoleEmployee, authz.RoleEmployee))
}

func TestCapabilitiesOf(t *testing.T) {
	engine := authz.Default()
	all := authz.Capabilities{
		CanManageUsers: true, CanManageProjects: true, CanManageTasks: true,
		CanViewAllAttendance: true, CanManageLeaves: true, CanViewAllChats: true,
		CanViewAllTimetracker: true, CanExportData: true, CanManageSettings: true, CanDeleteData: true,
	}
	admin := all
	admin.CanManageSettings = false

	cases := map[authz.Role]authz.Capabilities{
		authz.RoleSuperAdmin: all,
		authz.RoleAdmin:      admin,
		authz.RoleHR: {
			CanViewAllAttendance:  true,
			CanManageLeaves:       true,
			CanViewAllChats:       true,
			CanViewAllTimetracker: true,
			CanExportData:         true,
		},
		authz.RoleEmployee: {},
		authz.RoleClient:   {},
	}
	for role, want := range cases {
		t.Run(string(role), func(t *testing.T) {
			got, err := engine.CapabilitiesOf(role)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := engine.CapabilitiesOf("root")
	assert.ErrorIs(t, err, authz.ErrUnknownRole)
}

func TestCapabilitiesFollowTables(t *testing.T) {
	tables := authz.DefaultTables()
	hr := tables.Modules[authz.ModuleProfile][authz.RoleHR]
	hr.Verbs = append(append([]authz.Action{}, hr.Verbs...), authz.ActionHardDelete)
	tables.Modules[authz.ModuleProfile][authz.RoleHR] = hr

	engine, err := authz.NewEngine(tables)
	require.NoError(t, err)
	caps, err := engine.CapabilitiesOf(authz.RoleHR)
	require.NoError(t, err)
	assert.True(t, caps.CanManageSettings)

	caps, err = engine.CapabilitiesOf(authz.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, caps.CanManageSettings)
}
