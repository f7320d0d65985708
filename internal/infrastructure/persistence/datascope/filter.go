// Package datascope narrows GORM queries to the rows a user's roles
// allow. A role carries one data scope per resource:
//   - ALL: every row in the tenant
//   - DEPARTMENT: rows in the user's department (created_by fallback for now)
//   - MACHINE: rows for the user's assigned machines
//   - CUSTOM: rows matching configured scope values on a whitelisted column
//   - SELF: rows the user created
//
// Usage:
//
//	filter := datascope.NewFilter(ctx, roles)
//	scopedDB := filter.Apply(db, "indent")
//	scopedDB.Find(&indents) // WHERE machine_id IN (...) for MACHINE scope
package datascope

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// DataScopeContextKey keys datascope values stored in a context.Context.
type DataScopeContextKey string

const (
	// ScopesKey holds the merged resource->scope map for the current user.
	ScopesKey DataScopeContextKey = "data_scopes"
	// MachineIDsKey holds the machine IDs assigned to the current user.
	MachineIDsKey DataScopeContextKey = "machine_ids"
)

// machineScopedResources maps each resource that supports machine-level
// scoping to the column carrying the machine reference. Indent paperwork
// (the indent itself, vendor quotations, goods receipts) is raised against
// a machine, so all three filter on machine_id.
var machineScopedResources = map[string]string{
	"indent":    "machine_id",
	"quotation": "machine_id",
	"receipt":   "machine_id",
}

// allowedScopeFields whitelists columns a CUSTOM scope may filter on.
// Scope fields come from role configuration, so anything outside this
// set is treated as untrusted and ignored.
var allowedScopeFields = map[string]bool{
	"machine_id":    true,
	"department_id": true,
	"created_by":    true,
	"owner_id":      true,
	"assigned_to":   true,
}

// scopeLevels orders scope types by breadth of access. When several roles
// grant scopes for the same resource, the widest one wins.
var scopeLevels = map[identity.DataScopeType]int{
	identity.DataScopeAll:        100,
	identity.DataScopeDepartment: 50,
	identity.DataScopeMachine:    45,
	identity.DataScopeCustom:     40,
	identity.DataScopeSelf:       10,
}

// compareScopeLevel reports whether a grants more access than b:
// positive when a is wider, negative when narrower, zero when equal.
func compareScopeLevel(a, b identity.DataScopeType) int {
	return scopeLevels[a] - scopeLevels[b]
}

// mergeScope records ds unless a wider scope for the same resource is
// already present.
func mergeScope(into map[string]identity.DataScope, ds identity.DataScope) {
	existing, found := into[ds.Resource]
	if !found || compareScopeLevel(ds.ScopeType, existing.ScopeType) > 0 {
		into[ds.Resource] = ds
	}
}

// scopesFromRoles merges the data scopes of every enabled role into a
// resource->scope map, widest scope winning per resource.
func scopesFromRoles(roles []identity.Role) map[string]identity.DataScope {
	merged := make(map[string]identity.DataScope)
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		for _, ds := range role.DataScopes {
			mergeScope(merged, ds)
		}
	}
	return merged
}

// MergeScopes combines scope lists from several sources, keeping the
// widest scope per resource.
func MergeScopes(scopesList ...[]identity.DataScope) map[string]identity.DataScope {
	merged := make(map[string]identity.DataScope)
	for _, scopes := range scopesList {
		for _, ds := range scopes {
			mergeScope(merged, ds)
		}
	}
	return merged
}

// userIDFromContext parses the request-scoped user ID, returning uuid.Nil
// when absent or malformed.
func userIDFromContext(ctx context.Context) uuid.UUID {
	raw := logger.GetUserID(ctx)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Filter restricts GORM queries to rows visible under the user's merged
// data scopes.
type Filter struct {
	ctx        context.Context
	userID     uuid.UUID
	dataScopes map[string]identity.DataScope // resource -> widest granted scope
}

// NewFilter builds a Filter by merging the data scopes of the given roles.
func NewFilter(ctx context.Context, roles []identity.Role) *Filter {
	return &Filter{
		ctx:        ctx,
		userID:     userIDFromContext(ctx),
		dataScopes: scopesFromRoles(roles),
	}
}

// NewFilterFromContext builds a Filter from scopes previously stored in
// the context via WithDataScopes. Without stored scopes the filter is
// empty, which grants full access.
func NewFilterFromContext(ctx context.Context) *Filter {
	f := &Filter{
		ctx:        ctx,
		userID:     userIDFromContext(ctx),
		dataScopes: make(map[string]identity.DataScope),
	}
	if scopes, ok := ctx.Value(ScopesKey).(map[string]identity.DataScope); ok {
		f.dataScopes = scopes
	}
	return f
}

// WithDataScopes stores the merged data scopes of the given roles in the
// context so later repository calls can recover them with
// NewFilterFromContext.
func WithDataScopes(ctx context.Context, roles []identity.Role) context.Context {
	return context.WithValue(ctx, ScopesKey, scopesFromRoles(roles))
}

// Apply adds the WHERE clause implied by the user's scope for resource.
// Resources without a configured scope pass through unfiltered.
func (f *Filter) Apply(db *gorm.DB, resource string) *gorm.DB {
	ds, found := f.dataScopes[resource]
	if !found {
		return db
	}

	switch ds.ScopeType {
	case identity.DataScopeAll:
		return db
	case identity.DataScopeSelf:
		return f.ownRowsOnly(db)
	case identity.DataScopeDepartment:
		// TODO: filter on department membership once departments land;
		// until then department scope behaves like SELF.
		return f.ownRowsOnly(db)
	case identity.DataScopeMachine:
		return f.assignedMachinesOnly(db, ds)
	case identity.DataScopeCustom:
		return f.customScope(db, ds, resource)
	default:
		return db
	}
}

// denyAll produces a query matching no rows. Used when a restrictive
// scope has nothing to match against, failing closed.
func denyAll(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func (f *Filter) ownRowsOnly(db *gorm.DB) *gorm.DB {
	if f.userID == uuid.Nil {
		return denyAll(db)
	}
	return db.Where("created_by = ?", f.userID)
}

func (f *Filter) assignedMachinesOnly(db *gorm.DB, ds identity.DataScope) *gorm.DB {
	if len(ds.ScopeValues) == 0 {
		return denyAll(db)
	}
	return db.Where("machine_id IN ?", ds.ScopeValues)
}

// customScope filters on the scope's configured column. The column must
// pass the whitelist; otherwise, and when no column is configured and the
// resource has no default, it falls back to created_by.
func (f *Filter) customScope(db *gorm.DB, ds identity.DataScope, resource string) *gorm.DB {
	if len(ds.ScopeValues) == 0 {
		return denyAll(db)
	}
	field := ds.ScopeField
	if field == "" {
		field = f.getDefaultScopeField(resource)
	}
	if field == "" || !allowedScopeFields[field] {
		return db.Where("created_by IN ?", ds.ScopeValues)
	}
	return db.Where(field+" IN ?", ds.ScopeValues)
}

// getDefaultScopeField returns the machine column for machine-scoped
// resources, empty otherwise.
func (f *Filter) getDefaultScopeField(resource string) string {
	return machineScopedResources[resource]
}

// ApplyToQuery wraps Apply as a GORM scope function for use with
// db.Scopes().
func (f *Filter) ApplyToQuery(resource string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return f.Apply(db, resource)
	}
}

// GetScopeType returns the granted scope type for resource, defaulting
// to ALL when none is configured.
func (f *Filter) GetScopeType(resource string) identity.DataScopeType {
	if ds, found := f.dataScopes[resource]; found {
		return ds.ScopeType
	}
	return identity.DataScopeAll
}

// HasScope reports whether any scope is configured for resource.
func (f *Filter) HasScope(resource string) bool {
	_, found := f.dataScopes[resource]
	return found
}

// GetUserID returns the user the filter was built for.
func (f *Filter) GetUserID() uuid.UUID {
	return f.userID
}

// CanAccessAll reports whether the user sees every row of resource,
// either through an explicit ALL scope or the absence of any scope.
func (f *Filter) CanAccessAll(resource string) bool {
	ds, found := f.dataScopes[resource]
	if !found {
		return true
	}
	return ds.ScopeType == identity.DataScopeAll
}

// IsOwner reports whether the filter's user created the record.
func (f *Filter) IsOwner(createdBy *uuid.UUID) bool {
	if createdBy == nil || f.userID == uuid.Nil {
		return false
	}
	return *createdBy == f.userID
}

// GetMachineIDs returns the machine IDs the user may touch for resource,
// or nil when access is not machine-restricted.
func (f *Filter) GetMachineIDs(resource string) []string {
	if ds, found := f.dataScopes[resource]; found && ds.ScopeType == identity.DataScopeMachine {
		return ds.ScopeValues
	}
	return nil
}

// HasMachineAccess reports whether the user may touch machineID under
// resource. Only a MACHINE scope restricts this; every other scope type
// leaves machine access open.
func (f *Filter) HasMachineAccess(resource string, machineID string) bool {
	ds, found := f.dataScopes[resource]
	if !found || ds.ScopeType != identity.DataScopeMachine {
		return true
	}
	return slices.Contains(ds.ScopeValues, machineID)
}

// IsMachineScoped reports whether resource access is restricted to
// assigned machines.
func (f *Filter) IsMachineScoped(resource string) bool {
	ds, found := f.dataScopes[resource]
	return found && ds.ScopeType == identity.DataScopeMachine
}

// ScopeFunc is the GORM scope function shape used with db.Scopes().
type ScopeFunc func(*gorm.DB) *gorm.DB

// DataScopeScope builds a GORM scope straight from roles.
func DataScopeScope(ctx context.Context, resource string, roles []identity.Role) ScopeFunc {
	return NewFilter(ctx, roles).ApplyToQuery(resource)
}

// DataScopeScopeFromContext builds a GORM scope from scopes stored in the
// context.
func DataScopeScopeFromContext(ctx context.Context, resource string) ScopeFunc {
	return NewFilterFromContext(ctx).ApplyToQuery(resource)
}

// WithMachineIDs stores the user's assigned machine IDs in the context
// for handlers that need them outside query filtering.
func WithMachineIDs(ctx context.Context, machineIDs []string) context.Context {
	return context.WithValue(ctx, MachineIDsKey, machineIDs)
}

// GetMachineIDsFromContext returns machine IDs stored by WithMachineIDs,
// or nil.
func GetMachineIDsFromContext(ctx context.Context) []string {
	ids, _ := ctx.Value(MachineIDsKey).([]string)
	return ids
}

// IsResourceMachineScoped reports whether resource supports machine-level
// scoping at all.
func IsResourceMachineScoped(resource string) bool {
	_, found := machineScopedResources[resource]
	return found
}

// CreateMachineScopesForRole builds MACHINE scopes covering every
// machine-scoped resource, for configuring storekeeper roles with a
// consistent machine assignment. Returns nil when no machines are given.
func CreateMachineScopesForRole(machineIDs []string) ([]identity.DataScope, error) {
	if len(machineIDs) == 0 {
		return nil, nil
	}
	scopes := make([]identity.DataScope, 0, len(machineScopedResources))
	for resource := range machineScopedResources {
		ds, err := identity.NewMachineDataScope(resource, machineIDs)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, *ds)
	}
	return scopes, nil
}
