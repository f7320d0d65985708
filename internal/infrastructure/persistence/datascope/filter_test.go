package datascope

import (
	"context"
	"testing"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopedRole builds an enabled role carrying the given data scopes.
func scopedRole(t *testing.T, tenantID uuid.UUID, code, name string, scopes ...identity.DataScope) *identity.Role {
	t.Helper()
	role, err := identity.NewRole(tenantID, code, name)
	require.NoError(t, err)
	for _, ds := range scopes {
		require.NoError(t, role.SetDataScope(ds))
	}
	return role
}

// resourceScope builds a plain (non-custom) scope for a resource.
func resourceScope(t *testing.T, resource string, st identity.DataScopeType) identity.DataScope {
	t.Helper()
	ds, err := identity.NewDataScope(resource, st)
	require.NoError(t, err)
	return *ds
}

// machineScope builds a machine-restricted scope for a resource.
func machineScope(t *testing.T, resource string, machineIDs ...string) identity.DataScope {
	t.Helper()
	ds, err := identity.NewMachineDataScope(resource, machineIDs)
	require.NoError(t, err)
	return *ds
}

// userCtx returns a context carrying the given user ID the way the auth
// middleware would set it.
func userCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), userID.String())
	return ctx
}

func TestNewFilter(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("no roles yields no scopes", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.NotNil(t, filter)
		assert.Empty(t, filter.dataScopes)
	})

	t.Run("picks up user ID from context", func(t *testing.T) {
		filter := NewFilter(userCtx(userID), []identity.Role{})

		assert.Equal(t, userID, filter.userID)
	})

	t.Run("widest scope wins when roles overlap", func(t *testing.T) {
		requester := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))

		filter := NewFilter(context.Background(), []identity.Role{*requester, *manager})

		assert.Equal(t, identity.DataScopeAll, filter.GetScopeType("indent"))
	})

	t.Run("disabled roles contribute nothing", func(t *testing.T) {
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))
		require.NoError(t, manager.Disable())
		requester := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))

		filter := NewFilter(context.Background(), []identity.Role{*manager, *requester})

		assert.Equal(t, identity.DataScopeSelf, filter.GetScopeType("indent"))
	})
}

func TestFilter_ScopeLookups(t *testing.T) {
	tenantID := uuid.New()

	selfFilter := func(t *testing.T) *Filter {
		role := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))
		return NewFilter(context.Background(), []identity.Role{*role})
	}
	allFilter := func(t *testing.T) *Filter {
		role := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))
		return NewFilter(context.Background(), []identity.Role{*role})
	}
	emptyFilter := NewFilter(context.Background(), []identity.Role{})

	t.Run("GetScopeType defaults to ALL for unconfigured resources", func(t *testing.T) {
		assert.Equal(t, identity.DataScopeAll, emptyFilter.GetScopeType("gate_pass"))
	})

	t.Run("GetScopeType returns the configured type", func(t *testing.T) {
		assert.Equal(t, identity.DataScopeSelf, selfFilter(t).GetScopeType("indent"))
	})

	t.Run("HasScope distinguishes configured from unconfigured", func(t *testing.T) {
		assert.False(t, emptyFilter.HasScope("gate_pass"))
		assert.True(t, selfFilter(t).HasScope("indent"))
	})

	t.Run("CanAccessAll honours the scope type", func(t *testing.T) {
		assert.True(t, emptyFilter.CanAccessAll("gate_pass"))
		assert.True(t, allFilter(t).CanAccessAll("indent"))
		assert.False(t, selfFilter(t).CanAccessAll("indent"))
	})
}

func TestFilter_IsOwner(t *testing.T) {
	userID := uuid.New()

	t.Run("nil createdBy is never owned", func(t *testing.T) {
		filter := NewFilter(userCtx(userID), []identity.Role{})

		assert.False(t, filter.IsOwner(nil))
	})

	t.Run("anonymous context owns nothing", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})
		createdBy := uuid.New()

		assert.False(t, filter.IsOwner(&createdBy))
	})

	t.Run("matching user is the owner", func(t *testing.T) {
		filter := NewFilter(userCtx(userID), []identity.Role{})

		assert.True(t, filter.IsOwner(&userID))
	})

	t.Run("different user is not the owner", func(t *testing.T) {
		filter := NewFilter(userCtx(userID), []identity.Role{})
		otherUser := uuid.New()

		assert.False(t, filter.IsOwner(&otherUser))
	})
}

func TestWithDataScopes(t *testing.T) {
	tenantID := uuid.New()

	t.Run("stores merged scopes in the context", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			resourceScope(t, "indent", identity.DataScopeSelf),
			resourceScope(t, "material", identity.DataScopeAll))

		ctx := WithDataScopes(context.Background(), []identity.Role{*storekeeper})

		scopes, ok := ctx.Value(ScopesKey).(map[string]identity.DataScope)
		require.True(t, ok)
		assert.Len(t, scopes, 2)
		assert.Equal(t, identity.DataScopeSelf, scopes["indent"].ScopeType)
		assert.Equal(t, identity.DataScopeAll, scopes["material"].ScopeType)
	})
}

func TestNewFilterFromContext(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("rebuilds the filter from context scopes", func(t *testing.T) {
		requester := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))
		ctx := WithDataScopes(userCtx(userID), []identity.Role{*requester})

		filter := NewFilterFromContext(ctx)

		assert.Equal(t, userID, filter.userID)
		assert.Equal(t, identity.DataScopeSelf, filter.GetScopeType("indent"))
	})

	t.Run("tolerates a context without scopes", func(t *testing.T) {
		filter := NewFilterFromContext(context.Background())

		assert.Empty(t, filter.dataScopes)
		assert.Equal(t, identity.DataScopeAll, filter.GetScopeType("any_resource"))
	})
}

func TestCompareScopeLevel(t *testing.T) {
	testCases := map[string]struct {
		a, b     identity.DataScopeType
		expected int
	}{
		"ALL > SELF":           {identity.DataScopeAll, identity.DataScopeSelf, 90},
		"ALL > DEPARTMENT":     {identity.DataScopeAll, identity.DataScopeDepartment, 50},
		"ALL > MACHINE":        {identity.DataScopeAll, identity.DataScopeMachine, 55},
		"DEPARTMENT > SELF":    {identity.DataScopeDepartment, identity.DataScopeSelf, 40},
		"DEPARTMENT > CUSTOM":  {identity.DataScopeDepartment, identity.DataScopeCustom, 10},
		"DEPARTMENT > MACHINE": {identity.DataScopeDepartment, identity.DataScopeMachine, 5},
		"MACHINE > CUSTOM":     {identity.DataScopeMachine, identity.DataScopeCustom, 5},
		"MACHINE > SELF":       {identity.DataScopeMachine, identity.DataScopeSelf, 35},
		"MACHINE < ALL":        {identity.DataScopeMachine, identity.DataScopeAll, -55},
		"CUSTOM > SELF":        {identity.DataScopeCustom, identity.DataScopeSelf, 30},
		"SELF < ALL":           {identity.DataScopeSelf, identity.DataScopeAll, -90},
		"SELF == SELF":         {identity.DataScopeSelf, identity.DataScopeSelf, 0},
		"ALL == ALL":           {identity.DataScopeAll, identity.DataScopeAll, 0},
		"MACHINE == MACHINE":   {identity.DataScopeMachine, identity.DataScopeMachine, 0},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, compareScopeLevel(tc.a, tc.b))
		})
	}
}

func TestMergeScopes(t *testing.T) {
	machineID := uuid.New().String()

	t.Run("no input yields no scopes", func(t *testing.T) {
		assert.Empty(t, MergeScopes())
	})

	t.Run("single list passes through", func(t *testing.T) {
		result := MergeScopes([]identity.DataScope{
			resourceScope(t, "indent", identity.DataScopeSelf),
			resourceScope(t, "material", identity.DataScopeAll),
		})

		assert.Len(t, result, 2)
		assert.Equal(t, identity.DataScopeSelf, result["indent"].ScopeType)
		assert.Equal(t, identity.DataScopeAll, result["material"].ScopeType)
	})

	t.Run("higher permission wins across lists", func(t *testing.T) {
		result := MergeScopes(
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeSelf)},
			[]identity.DataScope{
				resourceScope(t, "indent", identity.DataScopeAll),
				resourceScope(t, "material", identity.DataScopeSelf),
			},
		)

		assert.Len(t, result, 2)
		assert.Equal(t, identity.DataScopeAll, result["indent"].ScopeType)
		assert.Equal(t, identity.DataScopeSelf, result["material"].ScopeType)
	})

	t.Run("three-way overlap resolves to the widest", func(t *testing.T) {
		result := MergeScopes(
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeDepartment)},
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeSelf)},
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeAll)},
		)

		assert.Len(t, result, 1)
		assert.Equal(t, identity.DataScopeAll, result["indent"].ScopeType)
	})

	t.Run("ALL takes precedence over MACHINE", func(t *testing.T) {
		result := MergeScopes(
			[]identity.DataScope{machineScope(t, "indent", machineID)},
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeAll)},
		)

		assert.Len(t, result, 1)
		assert.Equal(t, identity.DataScopeAll, result["indent"].ScopeType)
	})

	t.Run("MACHINE takes precedence over SELF", func(t *testing.T) {
		result := MergeScopes(
			[]identity.DataScope{resourceScope(t, "indent", identity.DataScopeSelf)},
			[]identity.DataScope{machineScope(t, "indent", machineID)},
		)

		assert.Len(t, result, 1)
		assert.Equal(t, identity.DataScopeMachine, result["indent"].ScopeType)
	})

	t.Run("MACHINE takes precedence over CUSTOM", func(t *testing.T) {
		dsCustom, err := identity.NewCustomDataScope("indent", []string{"value1"})
		require.NoError(t, err)

		result := MergeScopes(
			[]identity.DataScope{*dsCustom},
			[]identity.DataScope{machineScope(t, "indent", machineID)},
		)

		assert.Len(t, result, 1)
		assert.Equal(t, identity.DataScopeMachine, result["indent"].ScopeType)
	})
}

func TestFilter_GetUserID(t *testing.T) {
	t.Run("returns the context user", func(t *testing.T) {
		userID := uuid.New()
		filter := NewFilter(userCtx(userID), []identity.Role{})

		assert.Equal(t, userID, filter.GetUserID())
	})

	t.Run("anonymous context yields the nil UUID", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.Equal(t, uuid.Nil, filter.GetUserID())
	})
}

func TestDataScopeScopeFromContext(t *testing.T) {
	tenantID := uuid.New()

	t.Run("yields a GORM scope function", func(t *testing.T) {
		requester := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))
		ctx := WithDataScopes(context.Background(), []identity.Role{*requester})

		assert.NotNil(t, DataScopeScopeFromContext(ctx, "indent"))
	})
}

func TestFilter_getDefaultScopeField(t *testing.T) {
	filter := &Filter{}

	testCases := []struct {
		resource      string
		expectedField string
	}{
		{"indent", "machine_id"},
		{"quotation", "machine_id"},
		{"receipt", "machine_id"},
		{"material", ""},
		{"machine", ""},
		{"user", ""},
		{"unknown_resource", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.resource, func(t *testing.T) {
			assert.Equal(t, tc.expectedField, filter.getDefaultScopeField(tc.resource))
		})
	}
}

func TestFilter_CustomScopeWithField(t *testing.T) {
	tenantID := uuid.New()
	machineID := uuid.New()

	t.Run("explicit scope field is honoured", func(t *testing.T) {
		ds, err := identity.NewCustomDataScopeWithField("indent", "machine_id", []string{machineID.String()})
		require.NoError(t, err)
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper", *ds)

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.Equal(t, identity.DataScopeCustom, filter.GetScopeType("indent"))
	})

	t.Run("empty scope field falls back to the resource default", func(t *testing.T) {
		ds, err := identity.NewCustomDataScope("indent", []string{machineID.String()})
		require.NoError(t, err)
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper", *ds)

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.Equal(t, "machine_id", filter.getDefaultScopeField("indent"))
	})
}

func TestCustomDataScopeWithField(t *testing.T) {
	t.Run("carries field and values", func(t *testing.T) {
		ds, err := identity.NewCustomDataScopeWithField("indent", "machine_id", []string{"mc-1", "mc-2"})
		require.NoError(t, err)

		assert.Equal(t, "indent", ds.Resource)
		assert.Equal(t, identity.DataScopeCustom, ds.ScopeType)
		assert.Equal(t, "machine_id", ds.ScopeField)
		assert.Equal(t, []string{"mc-1", "mc-2"}, ds.ScopeValues)
	})

	t.Run("rejects an empty scope field", func(t *testing.T) {
		_, err := identity.NewCustomDataScopeWithField("indent", "", []string{"mc-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Scope field cannot be empty")
	})

	t.Run("rejects empty scope values", func(t *testing.T) {
		_, err := identity.NewCustomDataScopeWithField("indent", "machine_id", []string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one scope value")
	})
}

func TestMachineDataScope(t *testing.T) {
	t.Run("builds a machine_id scope", func(t *testing.T) {
		machineIDs := []string{"mc-001", "mc-002"}
		ds, err := identity.NewMachineDataScope("indent", machineIDs)
		require.NoError(t, err)

		assert.Equal(t, "indent", ds.Resource)
		assert.Equal(t, identity.DataScopeMachine, ds.ScopeType)
		assert.Equal(t, "machine_id", ds.ScopeField)
		assert.Equal(t, machineIDs, ds.ScopeValues)
	})

	t.Run("rejects empty machine IDs", func(t *testing.T) {
		_, err := identity.NewMachineDataScope("indent", []string{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one machine ID")
	})

	t.Run("rejects an empty resource", func(t *testing.T) {
		_, err := identity.NewMachineDataScope("", []string{"mc-001"})
		require.Error(t, err)
	})

	t.Run("is unaffected by later mutation of the input slice", func(t *testing.T) {
		machineIDs := []string{"mc-001", "mc-002"}
		ds, err := identity.NewMachineDataScope("indent", machineIDs)
		require.NoError(t, err)

		machineIDs[0] = "modified"

		assert.Equal(t, "mc-001", ds.ScopeValues[0])
	})
}

func TestFilter_MachineScope(t *testing.T) {
	tenantID := uuid.New()
	machineID1 := uuid.New().String()
	machineID2 := uuid.New().String()

	t.Run("machine-scoped role yields MACHINE scope", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1, machineID2))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.Equal(t, identity.DataScopeMachine, filter.GetScopeType("indent"))
	})

	t.Run("scope type survives an empty machine list", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper", identity.DataScope{
			Resource:    "indent",
			ScopeType:   identity.DataScopeMachine,
			ScopeField:  "machine_id",
			ScopeValues: []string{},
		})

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.Equal(t, identity.DataScopeMachine, filter.GetScopeType("indent"))
	})

	t.Run("MACHINE outranks SELF between roles", func(t *testing.T) {
		requester := scopedRole(t, tenantID, "REQUESTER", "Shop-Floor Requester",
			resourceScope(t, "indent", identity.DataScopeSelf))
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1))

		filter := NewFilter(context.Background(), []identity.Role{*requester, *storekeeper})

		assert.Equal(t, identity.DataScopeMachine, filter.GetScopeType("indent"))
	})

	t.Run("ALL outranks MACHINE between roles", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1))
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper, *manager})

		assert.Equal(t, identity.DataScopeAll, filter.GetScopeType("indent"))
	})
}

func TestFilter_GetMachineIDs(t *testing.T) {
	tenantID := uuid.New()
	machineID1 := uuid.New().String()
	machineID2 := uuid.New().String()

	t.Run("returns the assigned machines for MACHINE scope", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1, machineID2))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		machineIDs := filter.GetMachineIDs("indent")
		assert.Len(t, machineIDs, 2)
		assert.Contains(t, machineIDs, machineID1)
		assert.Contains(t, machineIDs, machineID2)
	})

	t.Run("nil outside MACHINE scope", func(t *testing.T) {
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))

		filter := NewFilter(context.Background(), []identity.Role{*manager})

		assert.Nil(t, filter.GetMachineIDs("indent"))
	})

	t.Run("nil for an unconfigured resource", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.Nil(t, filter.GetMachineIDs("indent"))
	})
}

func TestFilter_HasMachineAccess(t *testing.T) {
	tenantID := uuid.New()
	machineID1 := uuid.New().String()
	machineID2 := uuid.New().String()
	machineID3 := uuid.New().String()

	t.Run("assigned machines are accessible", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1, machineID2))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.True(t, filter.HasMachineAccess("indent", machineID1))
		assert.True(t, filter.HasMachineAccess("indent", machineID2))
	})

	t.Run("unassigned machines are not", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID1, machineID2))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.False(t, filter.HasMachineAccess("indent", machineID3))
	})

	t.Run("ALL scope sees every machine", func(t *testing.T) {
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))

		filter := NewFilter(context.Background(), []identity.Role{*manager})

		assert.True(t, filter.HasMachineAccess("indent", machineID1))
		assert.True(t, filter.HasMachineAccess("indent", machineID3))
	})

	t.Run("unconfigured resource is unrestricted", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.True(t, filter.HasMachineAccess("indent", machineID1))
	})
}

func TestFilter_IsMachineScoped(t *testing.T) {
	tenantID := uuid.New()
	machineID := uuid.New().String()

	t.Run("true only under MACHINE scope", func(t *testing.T) {
		storekeeper := scopedRole(t, tenantID, "STOREKEEPER", "Storekeeper",
			machineScope(t, "indent", machineID))

		filter := NewFilter(context.Background(), []identity.Role{*storekeeper})

		assert.True(t, filter.IsMachineScoped("indent"))
	})

	t.Run("false for other scope types", func(t *testing.T) {
		manager := scopedRole(t, tenantID, "PLANT_MANAGER", "Plant Manager",
			resourceScope(t, "indent", identity.DataScopeAll))

		filter := NewFilter(context.Background(), []identity.Role{*manager})

		assert.False(t, filter.IsMachineScoped("indent"))
	})

	t.Run("false for an unconfigured resource", func(t *testing.T) {
		filter := NewFilter(context.Background(), []identity.Role{})

		assert.False(t, filter.IsMachineScoped("indent"))
	})
}

func TestIsResourceMachineScoped(t *testing.T) {
	t.Run("indent workflow resources are machine scoped", func(t *testing.T) {
		assert.True(t, IsResourceMachineScoped("indent"))
		assert.True(t, IsResourceMachineScoped("quotation"))
		assert.True(t, IsResourceMachineScoped("receipt"))
	})

	t.Run("master data and identity resources are not", func(t *testing.T) {
		assert.False(t, IsResourceMachineScoped("material"))
		assert.False(t, IsResourceMachineScoped("user"))
		assert.False(t, IsResourceMachineScoped("role"))
		assert.False(t, IsResourceMachineScoped("unknown"))
	})
}

func TestCreateMachineScopesForRole(t *testing.T) {
	t.Run("covers every machine-scoped resource", func(t *testing.T) {
		machineIDs := []string{"mc-001", "mc-002"}
		scopes, err := CreateMachineScopesForRole(machineIDs)
		require.NoError(t, err)
		require.Len(t, scopes, 3)

		resourcesFound := make(map[string]bool)
		for _, ds := range scopes {
			assert.Equal(t, identity.DataScopeMachine, ds.ScopeType)
			assert.Equal(t, "machine_id", ds.ScopeField)
			assert.Equal(t, machineIDs, ds.ScopeValues)
			resourcesFound[ds.Resource] = true
		}

		assert.True(t, resourcesFound["indent"])
		assert.True(t, resourcesFound["quotation"])
		assert.True(t, resourcesFound["receipt"])
	})

	t.Run("nil for empty machine IDs", func(t *testing.T) {
		scopes, err := CreateMachineScopesForRole([]string{})
		require.NoError(t, err)
		assert.Nil(t, scopes)
	})

	t.Run("nil for nil machine IDs", func(t *testing.T) {
		scopes, err := CreateMachineScopesForRole(nil)
		require.NoError(t, err)
		assert.Nil(t, scopes)
	})
}

func TestWithMachineIDs(t *testing.T) {
	t.Run("round-trips machine IDs through the context", func(t *testing.T) {
		machineIDs := []string{"mc-001", "mc-002"}

		ctx := WithMachineIDs(context.Background(), machineIDs)

		assert.Equal(t, machineIDs, GetMachineIDsFromContext(ctx))
	})

	t.Run("nil when the context carries none", func(t *testing.T) {
		assert.Nil(t, GetMachineIDsFromContext(context.Background()))
	})
}
