package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApproverRole(t *testing.T) *Role {
	t.Helper()
	role, err := NewRole(uuid.New(), "APPROVER", "Indent Approver")
	require.NoError(t, err)
	return role
}

func TestNewPermission(t *testing.T) {
	cases := []struct {
		name     string
		resource string
		action   string
		wantErr  string
	}{
		{name: "valid", resource: "material", action: "create"},
		{name: "valid with underscore", resource: "indent", action: "view_all"},
		{name: "empty resource", resource: "", action: "create", wantErr: "resource cannot be empty"},
		{name: "empty action", resource: "material", action: "", wantErr: "action cannot be empty"},
		{name: "resource starting with digit", resource: "1material", action: "create", wantErr: "must start with a letter"},
		{name: "action with dash", resource: "material", action: "create-item", wantErr: "must start with a letter"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perm, err := NewPermission(tc.resource, tc.action)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Nil(t, perm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.resource+":"+tc.action, perm.Code)
			assert.Equal(t, tc.resource, perm.Resource)
			assert.Equal(t, tc.action, perm.Action)
		})
	}
}

func TestNewPermission_NormalizesCase(t *testing.T) {
	perm, err := NewPermission(" Material ", "CREATE")
	require.NoError(t, err)
	assert.Equal(t, "material:create", perm.Code)
}

func TestNewPermissionFromCode(t *testing.T) {
	perm, err := NewPermissionFromCode("indent:approve")
	require.NoError(t, err)
	assert.Equal(t, "indent", perm.Resource)
	assert.Equal(t, "approve", perm.Action)

	for _, bad := range []string{"indentapprove", ""} {
		_, err := NewPermissionFromCode(bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "format 'resource:action'")
	}
}

func TestPermission_Equality(t *testing.T) {
	create1, _ := NewPermission("material", "create")
	create2, _ := NewPermission("material", "create")
	read, _ := NewPermission("material", "read")

	assert.True(t, create1.Equals(*create2))
	assert.False(t, create1.Equals(*read))
	assert.False(t, create1.IsEmpty())
	assert.True(t, Permission{}.IsEmpty())
}

func TestNewDataScope(t *testing.T) {
	for _, scope := range []DataScopeType{DataScopeAll, DataScopeSelf, DataScopeDepartment, DataScopeMachine} {
		ds, err := NewDataScope("indent", scope)
		require.NoError(t, err, scope)
		assert.Equal(t, "indent", ds.Resource)
		assert.Equal(t, scope, ds.ScopeType)
	}

	_, err := NewDataScope("", DataScopeAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource cannot be empty")

	_, err = NewDataScope("indent", DataScopeType("warehouse"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data scope type")
}

func TestNewCustomDataScope(t *testing.T) {
	ds, err := NewCustomDataScope("indent", []string{"line_1", "line_2"})
	require.NoError(t, err)
	assert.Equal(t, DataScopeCustom, ds.ScopeType)
	assert.Len(t, ds.ScopeValues, 2)

	_, err = NewCustomDataScope("indent", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have at least one scope value")
}

func TestNewMachineDataScope(t *testing.T) {
	ds, err := NewMachineDataScope("indent", []string{"MC-01", "MC-02"})
	require.NoError(t, err)
	assert.Equal(t, DataScopeMachine, ds.ScopeType)
	assert.Equal(t, "machine_id", ds.ScopeField)
	assert.Equal(t, []string{"MC-01", "MC-02"}, ds.ScopeValues)

	_, err = NewMachineDataScope("indent", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one machine ID")
}

func TestDataScope_Equals(t *testing.T) {
	all1, _ := NewDataScope("indent", DataScopeAll)
	all2, _ := NewDataScope("indent", DataScopeAll)
	self, _ := NewDataScope("indent", DataScopeSelf)
	other, _ := NewDataScope("quotation", DataScopeAll)

	assert.True(t, all1.Equals(*all2))
	assert.False(t, all1.Equals(*self))
	assert.False(t, all1.Equals(*other))

	mc1, _ := NewMachineDataScope("indent", []string{"MC-01"})
	mc2, _ := NewMachineDataScope("indent", []string{"MC-02"})
	assert.False(t, mc1.Equals(*mc2))
}

func TestNewRole(t *testing.T) {
	cases := []struct {
		name     string
		code     string
		roleName string
		wantErr  string
	}{
		{name: "valid", code: "PURCHASER", roleName: "Purchaser"},
		{name: "valid with underscore", code: "STORE_MANAGER", roleName: "Store Manager"},
		{name: "empty code", code: "", roleName: "Approver", wantErr: "Role code cannot be empty"},
		{name: "code too short", code: "A", roleName: "Approver", wantErr: "at least 2 characters"},
		{name: "code starting with digit", code: "1ROLE", roleName: "Approver", wantErr: "must start with a letter"},
		{name: "code with dash", code: "ROLE-X", roleName: "Approver", wantErr: "must start with a letter"},
		{name: "empty name", code: "APPROVER", roleName: "", wantErr: "Role name cannot be empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tenantID := uuid.New()
			role, err := NewRole(tenantID, tc.code, tc.roleName)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tenantID, role.TenantID)
			assert.NotEqual(t, uuid.Nil, role.ID)
			assert.False(t, role.IsSystemRole)
			assert.True(t, role.IsEnabled)
			assert.Empty(t, role.Permissions)
			assert.Empty(t, role.DataScopes)

			events := role.GetDomainEvents()
			require.Len(t, events, 1)
			assert.IsType(t, &RoleCreatedEvent{}, events[0])
		})
	}
}

func TestNewRole_UppercasesCode(t *testing.T) {
	role, err := NewRole(uuid.New(), "line_supervisor", "Line Supervisor")
	require.NoError(t, err)
	assert.Equal(t, "LINE_SUPERVISOR", role.Code)
}

func TestNewSystemRole(t *testing.T) {
	role, err := NewSystemRole(uuid.New(), RoleCodeAdmin, "Administrator")
	require.NoError(t, err)
	assert.True(t, role.IsSystemRole)
	assert.True(t, role.IsEnabled)
	assert.False(t, role.CanDelete())

	assert.True(t, newApproverRole(t).CanDelete())
}

func TestRole_SetName(t *testing.T) {
	role := newApproverRole(t)
	before := role.Version

	require.NoError(t, role.SetName("Senior Approver"))
	assert.Equal(t, "Senior Approver", role.Name)
	assert.Equal(t, before+1, role.Version)

	err := role.SetName("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestRole_EnableDisable(t *testing.T) {
	role := newApproverRole(t)
	role.ClearDomainEvents()

	require.NoError(t, role.Disable())
	assert.False(t, role.IsEnabled)
	events := role.GetDomainEvents()
	require.Len(t, events, 1)
	assert.IsType(t, &RoleDisabledEvent{}, events[0])

	err := role.Disable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already disabled")

	role.ClearDomainEvents()
	require.NoError(t, role.Enable())
	assert.True(t, role.IsEnabled)
	events = role.GetDomainEvents()
	require.Len(t, events, 1)
	assert.IsType(t, &RoleEnabledEvent{}, events[0])

	err = role.Enable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already enabled")
}

func TestRole_GrantPermission(t *testing.T) {
	role := newApproverRole(t)
	role.ClearDomainEvents()

	perm, _ := NewPermission("indent", "approve")
	require.NoError(t, role.GrantPermission(*perm))
	assert.True(t, role.HasPermission("indent:approve"))

	events := role.GetDomainEvents()
	require.Len(t, events, 1)
	granted, ok := events[0].(*RolePermissionGrantedEvent)
	require.True(t, ok)
	assert.Equal(t, "indent:approve", granted.PermissionCode)

	err := role.GrantPermission(*perm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has this permission")

	err = role.GrantPermission(Permission{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Permission cannot be empty")

	require.NoError(t, role.GrantPermissionByCode("indent:reject"))
	assert.True(t, role.HasPermission("indent:reject"))
}

func TestRole_RevokePermission(t *testing.T) {
	role := newApproverRole(t)
	require.NoError(t, role.GrantPermissionByCode("indent:approve"))
	require.NoError(t, role.GrantPermissionByCode("indent:read"))
	role.ClearDomainEvents()

	require.NoError(t, role.RevokePermission("indent:approve"))
	assert.False(t, role.HasPermission("indent:approve"))
	assert.True(t, role.HasPermission("indent:read"))

	events := role.GetDomainEvents()
	require.Len(t, events, 1)
	revoked, ok := events[0].(*RolePermissionRevokedEvent)
	require.True(t, ok)
	assert.Equal(t, "indent:approve", revoked.PermissionCode)

	err := role.RevokePermission("indent:close")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not have this permission")
}

func TestRole_SetPermissions_Deduplicates(t *testing.T) {
	role := newApproverRole(t)

	create, _ := NewPermission("material", "create")
	read, _ := NewPermission("material", "read")
	dup, _ := NewPermission("material", "create")

	require.NoError(t, role.SetPermissions([]Permission{*create, *read, *dup}))
	assert.Len(t, role.Permissions, 2)
	assert.True(t, role.HasPermission("material:create"))
	assert.True(t, role.HasPermission("material:read"))

	err := role.SetPermissions([]Permission{{}})
	require.Error(t, err)
}

func TestRole_PermissionsByResource(t *testing.T) {
	role := newApproverRole(t)
	for _, code := range []string{"material:create", "material:read", "machine:read"} {
		require.NoError(t, role.GrantPermissionByCode(code))
	}

	assert.True(t, role.HasPermissionForResource("material"))
	assert.True(t, role.HasPermissionForResource("machine"))
	assert.False(t, role.HasPermissionForResource("indent"))

	assert.Len(t, role.GetPermissionsForResource("material"), 2)
	assert.Len(t, role.GetPermissionsForResource("machine"), 1)
	assert.Empty(t, role.GetPermissionsForResource("indent"))
}

func TestRole_SetDataScope(t *testing.T) {
	role := newApproverRole(t)
	role.ClearDomainEvents()

	self, _ := NewDataScope("indent", DataScopeSelf)
	require.NoError(t, role.SetDataScope(*self))
	assert.True(t, role.HasDataScope("indent"))

	events := role.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*RoleDataScopeChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "indent", changed.Resource)
	assert.Equal(t, DataScopeSelf, changed.ScopeType)

	// same resource replaces rather than accumulates
	all, _ := NewDataScope("indent", DataScopeAll)
	require.NoError(t, role.SetDataScope(*all))
	assert.Len(t, role.DataScopes, 1)
	got := role.GetDataScope("indent")
	require.NotNil(t, got)
	assert.Equal(t, DataScopeAll, got.ScopeType)

	err := role.SetDataScope(DataScope{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data scope cannot be empty")
}

func TestRole_RemoveDataScope(t *testing.T) {
	role := newApproverRole(t)
	indent, _ := NewDataScope("indent", DataScopeSelf)
	quotation, _ := NewDataScope("quotation", DataScopeAll)
	require.NoError(t, role.SetDataScope(*indent))
	require.NoError(t, role.SetDataScope(*quotation))

	require.NoError(t, role.RemoveDataScope("indent"))
	assert.False(t, role.HasDataScope("indent"))
	assert.True(t, role.HasDataScope("quotation"))

	err := role.RemoveDataScope("receipt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not have data scope")
}

func TestRole_SetDataScopes_FirstScopePerResourceWins(t *testing.T) {
	role := newApproverRole(t)

	self, _ := NewDataScope("indent", DataScopeSelf)
	all, _ := NewDataScope("quotation", DataScopeAll)
	dup, _ := NewDataScope("indent", DataScopeDepartment)

	require.NoError(t, role.SetDataScopes([]DataScope{*self, *all, *dup}))
	assert.Len(t, role.DataScopes, 2)

	got := role.GetDataScope("indent")
	require.NotNil(t, got)
	assert.Equal(t, DataScopeSelf, got.ScopeType)
}

func TestRole_Update(t *testing.T) {
	role := newApproverRole(t)
	role.ClearDomainEvents()

	require.NoError(t, role.Update("Plant Approver", "Approves plant indents"))
	assert.Equal(t, "Plant Approver", role.Name)
	assert.Equal(t, "Approves plant indents", role.Description)

	events := role.GetDomainEvents()
	require.Len(t, events, 1)
	assert.IsType(t, &RoleUpdatedEvent{}, events[0])
}

func TestRole_VersionIncrementsPerMutation(t *testing.T) {
	role := newApproverRole(t)
	start := role.Version

	role.SetDescription("desc")
	role.SetSortOrder(10)
	require.NoError(t, role.GrantPermissionByCode("material:read"))
	require.NoError(t, role.RevokePermission("material:read"))

	assert.Equal(t, start+4, role.Version)
}

func TestSeededRoleAndPermissionConstants(t *testing.T) {
	tenantID := uuid.New()
	for _, code := range []string{
		RoleCodeAdmin, RoleCodeOwner, RoleCodeManager, RoleCodeRequester,
		RoleCodeApprover, RoleCodePurchaser, RoleCodeStorekeeper,
	} {
		_, err := NewRole(tenantID, code, "Seeded Role")
		require.NoError(t, err, code)
	}

	resources := []string{
		ResourceIndent, ResourceMaterial, ResourceMachine, ResourceQuotation,
		ResourceReceipt, ResourceAttachment, ResourceReport,
	}
	actions := []string{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionSubmit, ActionApprove, ActionReject, ActionReceive,
	}
	for _, resource := range resources {
		for _, action := range actions {
			_, err := NewPermission(resource, action)
			require.NoError(t, err, "%s:%s", resource, action)
		}
	}
}
