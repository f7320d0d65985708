package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// DataScopeType classifies how far a role's read access reaches for a
// resource.
type DataScopeType string

const (
	DataScopeAll        DataScopeType = "all"        // every row in the tenant
	DataScopeSelf       DataScopeType = "self"       // rows the user created
	DataScopeDepartment DataScopeType = "department" // rows within the user's department
	DataScopeCustom     DataScopeType = "custom"     // explicit scope values
	DataScopeMachine    DataScopeType = "machine"    // rows for the user's assigned machines
)

var (
	roleCodePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	permTokenPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Permission is a resource:action pair, e.g. "indent:approve". Value
// object, compared by code.
type Permission struct {
	Code        string
	Resource    string
	Action      string
	Description string
}

// NewPermission builds a Permission from its resource and action parts.
func NewPermission(resource, action string) (*Permission, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))
	if err := validatePermissionToken(resource, "INVALID_PERMISSION_RESOURCE", "resource"); err != nil {
		return nil, err
	}
	if err := validatePermissionToken(action, "INVALID_PERMISSION_ACTION", "action"); err != nil {
		return nil, err
	}
	return &Permission{
		Code:     resource + ":" + action,
		Resource: resource,
		Action:   action,
	}, nil
}

// NewPermissionWithDescription builds a Permission carrying a display
// description.
func NewPermissionWithDescription(resource, action, description string) (*Permission, error) {
	perm, err := NewPermission(resource, action)
	if err != nil {
		return nil, err
	}
	perm.Description = description
	return perm, nil
}

// NewPermissionFromCode parses a "resource:action" code.
func NewPermissionFromCode(code string) (*Permission, error) {
	resource, action, ok := strings.Cut(code, ":")
	if !ok {
		return nil, shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code must be in format 'resource:action'")
	}
	return NewPermission(resource, action)
}

func (p Permission) Equals(other Permission) bool { return p.Code == other.Code }

func (p Permission) IsEmpty() bool { return p.Code == "" }

// DataScope is a per-resource row visibility rule. Value object.
type DataScope struct {
	Resource    string
	ScopeType   DataScopeType
	ScopeField  string   // column the scope filters on, e.g. "machine_id"
	ScopeValues []string // populated for custom and machine scopes
	Description string
}

// NewDataScope builds a scope of the given type with no explicit values.
func NewDataScope(resource string, scopeType DataScopeType) (*DataScope, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	if err := validatePermissionToken(resource, "INVALID_PERMISSION_RESOURCE", "resource"); err != nil {
		return nil, err
	}
	switch scopeType {
	case DataScopeAll, DataScopeSelf, DataScopeDepartment, DataScopeCustom, DataScopeMachine:
	default:
		return nil, shared.NewDomainError("INVALID_DATA_SCOPE_TYPE", "Invalid data scope type")
	}
	return &DataScope{
		Resource:    resource,
		ScopeType:   scopeType,
		ScopeValues: make([]string, 0),
	}, nil
}

// NewCustomDataScope builds a custom scope restricted to the given values.
func NewCustomDataScope(resource string, scopeValues []string) (*DataScope, error) {
	ds, err := NewDataScope(resource, DataScopeCustom)
	if err != nil {
		return nil, err
	}
	if len(scopeValues) == 0 {
		return nil, shared.NewDomainError("INVALID_SCOPE_VALUES", "Custom data scope must have at least one scope value")
	}
	ds.ScopeValues = append([]string{}, scopeValues...)
	return ds, nil
}

// NewCustomDataScopeWithField is NewCustomDataScope with an explicit
// filter column.
func NewCustomDataScopeWithField(resource, scopeField string, scopeValues []string) (*DataScope, error) {
	ds, err := NewCustomDataScope(resource, scopeValues)
	if err != nil {
		return nil, err
	}
	scopeField = strings.TrimSpace(scopeField)
	if scopeField == "" {
		return nil, shared.NewDomainError("INVALID_SCOPE_FIELD", "Scope field cannot be empty for custom data scope with field")
	}
	ds.ScopeField = scopeField
	return ds, nil
}

// NewMachineDataScope restricts a resource to the given machines. This
// is how storekeeper accounts are fenced to the machines they serve.
func NewMachineDataScope(resource string, machineIDs []string) (*DataScope, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	if err := validatePermissionToken(resource, "INVALID_PERMISSION_RESOURCE", "resource"); err != nil {
		return nil, err
	}
	if len(machineIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_MACHINE_IDS", "Machine data scope must have at least one machine ID")
	}
	return &DataScope{
		Resource:    resource,
		ScopeType:   DataScopeMachine,
		ScopeField:  "machine_id",
		ScopeValues: append([]string{}, machineIDs...),
	}, nil
}

func (ds *DataScope) SetDescription(description string) { ds.Description = description }

// Equals compares scopes including their values, in order.
func (ds DataScope) Equals(other DataScope) bool {
	if ds.Resource != other.Resource || ds.ScopeType != other.ScopeType || ds.ScopeField != other.ScopeField {
		return false
	}
	if len(ds.ScopeValues) != len(other.ScopeValues) {
		return false
	}
	for i, v := range ds.ScopeValues {
		if v != other.ScopeValues[i] {
			return false
		}
	}
	return true
}

func (ds DataScope) IsEmpty() bool { return ds.Resource == "" }

// Role is the aggregate root of the RBAC model. A role bundles the
// functional permissions and row-level scopes granted to its holders.
type Role struct {
	shared.TenantAggregateRoot
	Code         string
	Name         string
	Description  string
	IsSystemRole bool // seeded roles, protected from deletion
	IsEnabled    bool
	SortOrder    int
	Permissions  []Permission // persisted in role_permissions
	DataScopes   []DataScope  // persisted in role_data_scopes
}

// RolePermission is the persistence shape of a granted permission.
type RolePermission struct {
	RoleID      uuid.UUID
	TenantID    uuid.UUID
	Code        string
	Resource    string
	Action      string
	Description string
	CreatedAt   time.Time
}

// RoleDataScope is the persistence shape of a configured data scope.
type RoleDataScope struct {
	RoleID      uuid.UUID
	TenantID    uuid.UUID
	Resource    string
	ScopeType   DataScopeType
	ScopeField  string
	ScopeValues string // JSON array for custom and machine scopes
	Description string
	CreatedAt   time.Time
}

// NewRole creates an enabled, non-system role.
func NewRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	if err := validateRoleCode(code); err != nil {
		return nil, err
	}
	if err := validateRoleName(name); err != nil {
		return nil, err
	}

	role := &Role{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		IsEnabled:           true,
		Permissions:         make([]Permission, 0),
		DataScopes:          make([]DataScope, 0),
	}
	role.AddDomainEvent(NewRoleCreatedEvent(role))
	return role, nil
}

// NewSystemRole creates a seeded role that cannot be deleted.
func NewSystemRole(tenantID uuid.UUID, code, name string) (*Role, error) {
	role, err := NewRole(tenantID, code, name)
	if err != nil {
		return nil, err
	}
	role.IsSystemRole = true
	return role, nil
}

// touch records a mutation for optimistic locking.
func (r *Role) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

func (r *Role) SetName(name string) error {
	if err := validateRoleName(name); err != nil {
		return err
	}
	r.Name = strings.TrimSpace(name)
	r.touch()
	return nil
}

func (r *Role) SetDescription(description string) {
	r.Description = description
	r.touch()
}

func (r *Role) SetSortOrder(order int) {
	r.SortOrder = order
	r.touch()
}

func (r *Role) Enable() error {
	if r.IsEnabled {
		return shared.NewDomainError("ALREADY_ENABLED", "Role is already enabled")
	}
	r.IsEnabled = true
	r.touch()
	r.AddDomainEvent(NewRoleEnabledEvent(r))
	return nil
}

func (r *Role) Disable() error {
	if !r.IsEnabled {
		return shared.NewDomainError("ALREADY_DISABLED", "Role is already disabled")
	}
	r.IsEnabled = false
	r.touch()
	r.AddDomainEvent(NewRoleDisabledEvent(r))
	return nil
}

// GrantPermission adds a permission the role does not already hold.
func (r *Role) GrantPermission(perm Permission) error {
	if perm.IsEmpty() {
		return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
	}
	if r.HasPermission(perm.Code) {
		return shared.NewDomainError("PERMISSION_ALREADY_GRANTED", "Role already has this permission")
	}

	r.Permissions = append(r.Permissions, perm)
	r.touch()
	r.AddDomainEvent(NewRolePermissionGrantedEvent(r, perm))
	return nil
}

// GrantPermissionByCode parses and grants a "resource:action" code.
func (r *Role) GrantPermissionByCode(code string) error {
	perm, err := NewPermissionFromCode(code)
	if err != nil {
		return err
	}
	return r.GrantPermission(*perm)
}

// RevokePermission removes a held permission by code.
func (r *Role) RevokePermission(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_PERMISSION_CODE", "Permission code cannot be empty")
	}

	kept := make([]Permission, 0, len(r.Permissions))
	var revoked *Permission
	for _, p := range r.Permissions {
		if p.Code == code {
			p := p
			revoked = &p
			continue
		}
		kept = append(kept, p)
	}
	if revoked == nil {
		return shared.NewDomainError("PERMISSION_NOT_FOUND", "Role does not have this permission")
	}

	r.Permissions = kept
	r.touch()
	r.AddDomainEvent(NewRolePermissionRevokedEvent(r, *revoked))
	return nil
}

// SetPermissions replaces the full grant list, deduplicating by code.
func (r *Role) SetPermissions(permissions []Permission) error {
	seen := make(map[string]bool, len(permissions))
	unique := make([]Permission, 0, len(permissions))
	for _, p := range permissions {
		if p.IsEmpty() {
			return shared.NewDomainError("INVALID_PERMISSION", "Permission cannot be empty")
		}
		if !seen[p.Code] {
			seen[p.Code] = true
			unique = append(unique, p)
		}
	}

	r.Permissions = unique
	r.touch()
	return nil
}

func (r *Role) HasPermission(code string) bool {
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (r *Role) HasPermissionForResource(resource string) bool {
	return len(r.GetPermissionsForResource(resource)) > 0
}

// GetPermissionsForResource lists the role's grants on one resource.
func (r *Role) GetPermissionsForResource(resource string) []Permission {
	resource = strings.ToLower(strings.TrimSpace(resource))
	result := make([]Permission, 0)
	for _, p := range r.Permissions {
		if p.Resource == resource {
			result = append(result, p)
		}
	}
	return result
}

// SetDataScope installs a scope for its resource, replacing any
// existing scope on the same resource.
func (r *Role) SetDataScope(ds DataScope) error {
	if ds.IsEmpty() {
		return shared.NewDomainError("INVALID_DATA_SCOPE", "Data scope cannot be empty")
	}

	kept := make([]DataScope, 0, len(r.DataScopes)+1)
	for _, s := range r.DataScopes {
		if s.Resource != ds.Resource {
			kept = append(kept, s)
		}
	}
	r.DataScopes = append(kept, ds)
	r.touch()
	r.AddDomainEvent(NewRoleDataScopeChangedEvent(r, ds))
	return nil
}

// RemoveDataScope drops the scope configured for a resource.
func (r *Role) RemoveDataScope(resource string) error {
	resource = strings.ToLower(strings.TrimSpace(resource))

	kept := make([]DataScope, 0, len(r.DataScopes))
	found := false
	for _, s := range r.DataScopes {
		if s.Resource == resource {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return shared.NewDomainError("DATA_SCOPE_NOT_FOUND", "Role does not have data scope for this resource")
	}

	r.DataScopes = kept
	r.touch()
	return nil
}

// SetDataScopes replaces all scopes, keeping the first scope per resource.
func (r *Role) SetDataScopes(scopes []DataScope) error {
	seen := make(map[string]bool, len(scopes))
	unique := make([]DataScope, 0, len(scopes))
	for _, s := range scopes {
		if s.IsEmpty() {
			return shared.NewDomainError("INVALID_DATA_SCOPE", "Data scope cannot be empty")
		}
		if !seen[s.Resource] {
			seen[s.Resource] = true
			unique = append(unique, s)
		}
	}

	r.DataScopes = unique
	r.touch()
	return nil
}

// GetDataScope returns the scope configured for a resource, or nil.
func (r *Role) GetDataScope(resource string) *DataScope {
	resource = strings.ToLower(strings.TrimSpace(resource))
	for i := range r.DataScopes {
		if r.DataScopes[i].Resource == resource {
			return &r.DataScopes[i]
		}
	}
	return nil
}

func (r *Role) HasDataScope(resource string) bool {
	return r.GetDataScope(resource) != nil
}

// CanDelete reports whether deletion is allowed. System roles are not
// deletable.
func (r *Role) CanDelete() bool { return !r.IsSystemRole }

// Update changes name and description in one step.
func (r *Role) Update(name, description string) error {
	if err := r.SetName(name); err != nil {
		return err
	}
	r.SetDescription(description)
	r.AddDomainEvent(NewRoleUpdatedEvent(r))
	return nil
}

func validateRoleCode(code string) error {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot be empty")
	case len(code) < 2:
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must be at least 2 characters")
	case len(code) > 50:
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code cannot exceed 50 characters")
	case !roleCodePattern.MatchString(code):
		return shared.NewDomainError("INVALID_ROLE_CODE", "Role code must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

func validateRoleName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}

// validatePermissionToken validates a lowercase resource or action name.
func validatePermissionToken(value, errCode, label string) error {
	switch {
	case value == "":
		return shared.NewDomainError(errCode, "Permission "+label+" cannot be empty")
	case len(value) > 50:
		return shared.NewDomainError(errCode, "Permission "+label+" cannot exceed 50 characters")
	case !permTokenPattern.MatchString(value):
		return shared.NewDomainError(errCode, "Permission "+label+" must start with a letter and contain only lowercase letters, numbers, and underscores")
	}
	return nil
}

// System role codes seeded for every tenant.
const (
	RoleCodeAdmin       = "ADMIN"
	RoleCodeOwner       = "OWNER"
	RoleCodeManager     = "MANAGER"
	RoleCodeRequester   = "REQUESTER"
	RoleCodeApprover    = "APPROVER"
	RoleCodePurchaser   = "PURCHASER"
	RoleCodeStorekeeper = "STOREKEEPER"
)

// Permission resources.
const (
	ResourceIndent     = "indent"
	ResourceMaterial   = "material"
	ResourceMachine    = "machine"
	ResourceQuotation  = "quotation"
	ResourceReceipt    = "receipt"
	ResourceAttachment = "attachment"
	ResourceOutbox     = "outbox"
	ResourceReport     = "report"
	ResourceUser       = "user"
	ResourceRole       = "role"
	ResourceTenant     = "tenant"
)

// Permission actions.
const (
	ActionCreate     = "create"
	ActionRead       = "read"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionEnable     = "enable"
	ActionDisable    = "disable"
	ActionSubmit     = "submit"
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionRevert     = "revert"
	ActionOrder      = "order"
	ActionReceive    = "receive"
	ActionClose      = "close"
	ActionAdjust     = "adjust"
	ActionExport     = "export"
	ActionAssignRole = "assign_role"
	ActionViewAll    = "view_all"
)
