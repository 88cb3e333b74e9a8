package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/authz"
)

func TestDefaultTablesCoverEveryModuleAndRole(t *testing.T) {
	tables := authz.DefaultTables()
	_, err := authz.NewEngine(tables)
	require.NoError(t, err)

	for _, m := range authz.Modules() {
		require.Contains(t, tables.Modules, m)
		assert.Len(t, tables.Modules[m], len(authz.Roles()), "module %s", m)
	}
}

func TestNewEngineRejectsIncompleteTables(t *testing.T) {
	tables := authz.DefaultTables()
	delete(tables.Modules[authz.ModuleLeave], authz.RoleHR)
	_, err := authz.NewEngine(tables)
	require.ErrorIs(t, err, authz.ErrIncompleteTable)
	assert.True(t, authz.IsConfigError(err))

	tables = authz.DefaultTables()
	delete(tables.Modules, authz.ModuleChat)
	_, err = authz.NewEngine(tables)
	assert.ErrorIs(t, err, authz.ErrIncompleteTable)

	tables = authz.DefaultTables()
	delete(tables.SubActions[authz.SubScreenshot], authz.RoleClient)
	_, err = authz.NewEngine(tables)
	assert.ErrorIs(t, err, authz.ErrIncompleteTable)

	tables = authz.DefaultTables()
	delete(tables.MessageFields, authz.RoleEmployee)
	_, err = authz.NewEngine(tables)
	assert.ErrorIs(t, err, authz.ErrIncompleteTable)

	assert.Panics(t, func() { authz.MustNewEngine(authz.Tables{}) })
}

func TestPolicyEntries(t *testing.T) {
	engine := authz.Default()

	client, err := engine.Policy(authz.ModuleProject, authz.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, []authz.Action{"read"}, client.Actions)
	assert.Equal(t, []authz.Action{"view-assigned"}, client.Verbs)
	assert.Contains(t, client.Fields.Restricted, "budget")
	assert.Contains(t, client.Fields.Restricted, "teamMembers")

	employee, err := engine.Policy(authz.ModuleAttendance, authz.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, []string{"approvedBy", "approvedAt", "checkInLocation", "checkOutLocation"}, employee.Fields.Restricted)

	hr, err := engine.Policy(authz.ModuleLeave, authz.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, []authz.Action{"create", "read", "update", "approve", "export"}, hr.Actions)
	assert.Equal(t, []string{"*"}, hr.Fields.CanView)

	_, err = engine.Policy("payroll", authz.RoleAdmin)
	assert.ErrorIs(t, err, authz.ErrUnknownModule)
	_, err = engine.Policy(authz.ModuleLeave, "root")
	assert.ErrorIs(t, err, authz.ErrUnknownRole)
}

func TestPolicyReturnsCopy(t *testing.T) {
	engine := authz.Default()
	p, err := engine.Policy(authz.ModuleTask, authz.RoleClient)
	require.NoError(t, err)
	p.Actions[0] = "delete"
	p.Fields.CanView[0] = "budget"

	again, err := engine.Policy(authz.ModuleTask, authz.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, authz.Action("read"), again.Actions[0])
	assert.Equal(t, "title", again.Fields.CanView[0])
}

func TestPoliciesFor(t *testing.T) {
	policies, err := authz.Default().PoliciesFor(authz.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, policies, len(authz.Modules()))
	assert.Empty(t, policies[authz.ModuleChat].Fields.CanEdit)
}

func TestParseModule(t *testing.T) {
	m, err := authz.ParseModule("Leave")
	require.NoError(t, err)
	assert.Equal(t, authz.ModuleLeave, m)

	_, err = authz.ParseModule("payroll")
	assert.ErrorIs(t, err, authz.ErrUnknownModule)
}
