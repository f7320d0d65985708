package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/indentflow/backend/internal/domain/shared"
)

const AggregateTypeRole = "Role"

// Event types raised by the Role aggregate.
const (
	EventTypeRoleCreated           = "RoleCreated"
	EventTypeRoleUpdated           = "RoleUpdated"
	EventTypeRoleDeleted           = "RoleDeleted"
	EventTypeRoleEnabled           = "RoleEnabled"
	EventTypeRoleDisabled          = "RoleDisabled"
	EventTypeRolePermissionGranted = "RolePermissionGranted"
	EventTypeRolePermissionRevoked = "RolePermissionRevoked"
	EventTypeRoleDataScopeChanged  = "RoleDataScopeChanged"
	EventTypeRoleUsersChanged      = "RoleUsersChanged"
)

func roleEvent(eventType string, role *Role) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeRole, role.ID, role.TenantID)
}

// RoleCreatedEvent is raised when a role is created.
type RoleCreatedEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	Name         string `json:"name"`
	IsSystemRole bool   `json:"is_system_role"`
}

func NewRoleCreatedEvent(role *Role) *RoleCreatedEvent {
	return &RoleCreatedEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleCreated, role),
		Code:            role.Code,
		Name:            role.Name,
		IsSystemRole:    role.IsSystemRole,
	}
}

// RoleUpdatedEvent is raised when a role's basic attributes change.
type RoleUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewRoleUpdatedEvent(role *Role) *RoleUpdatedEvent {
	return &RoleUpdatedEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleUpdated, role),
		Code:            role.Code,
		Name:            role.Name,
	}
}

// RoleDeletedEvent is raised when a role is deleted.
type RoleDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

func NewRoleDeletedEvent(role *Role) *RoleDeletedEvent {
	return &RoleDeletedEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleDeleted, role),
		Code:            role.Code,
	}
}

// RoleEnabledEvent is raised when a role is switched on.
type RoleEnabledEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

func NewRoleEnabledEvent(role *Role) *RoleEnabledEvent {
	return &RoleEnabledEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleEnabled, role),
		Code:            role.Code,
	}
}

// RoleDisabledEvent is raised when a role is switched off.
type RoleDisabledEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

func NewRoleDisabledEvent(role *Role) *RoleDisabledEvent {
	return &RoleDisabledEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleDisabled, role),
		Code:            role.Code,
	}
}

// RolePermissionGrantedEvent is raised when a role gains a permission.
type RolePermissionGrantedEvent struct {
	shared.BaseDomainEvent
	RoleCode           string `json:"role_code"`
	PermissionCode     string `json:"permission_code"`
	PermissionResource string `json:"permission_resource"`
	PermissionAction   string `json:"permission_action"`
}

func NewRolePermissionGrantedEvent(role *Role, perm Permission) *RolePermissionGrantedEvent {
	return &RolePermissionGrantedEvent{
		BaseDomainEvent:    roleEvent(EventTypeRolePermissionGranted, role),
		RoleCode:           role.Code,
		PermissionCode:     perm.Code,
		PermissionResource: perm.Resource,
		PermissionAction:   perm.Action,
	}
}

// RolePermissionRevokedEvent is raised when a role loses a permission.
type RolePermissionRevokedEvent struct {
	shared.BaseDomainEvent
	RoleCode           string `json:"role_code"`
	PermissionCode     string `json:"permission_code"`
	PermissionResource string `json:"permission_resource"`
	PermissionAction   string `json:"permission_action"`
}

func NewRolePermissionRevokedEvent(role *Role, perm Permission) *RolePermissionRevokedEvent {
	return &RolePermissionRevokedEvent{
		BaseDomainEvent:    roleEvent(EventTypeRolePermissionRevoked, role),
		RoleCode:           role.Code,
		PermissionCode:     perm.Code,
		PermissionResource: perm.Resource,
		PermissionAction:   perm.Action,
	}
}

// RoleDataScopeChangedEvent is raised when the data scope for one of
// the role's resources changes.
type RoleDataScopeChangedEvent struct {
	shared.BaseDomainEvent
	RoleCode  string        `json:"role_code"`
	Resource  string        `json:"resource"`
	ScopeType DataScopeType `json:"scope_type"`
}

func NewRoleDataScopeChangedEvent(role *Role, ds DataScope) *RoleDataScopeChangedEvent {
	return &RoleDataScopeChangedEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleDataScopeChanged, role),
		RoleCode:        role.Code,
		Resource:        ds.Resource,
		ScopeType:       ds.ScopeType,
	}
}

// RoleUsersChangedEvent summarizes a batch change to the set of users
// holding the role.
type RoleUsersChangedEvent struct {
	shared.BaseDomainEvent
	RoleCode  string      `json:"role_code"`
	UserIDs   []uuid.UUID `json:"user_ids"`
	ChangedAt time.Time   `json:"changed_at"`
}

func NewRoleUsersChangedEvent(role *Role, userIDs []uuid.UUID) *RoleUsersChangedEvent {
	return &RoleUsersChangedEvent{
		BaseDomainEvent: roleEvent(EventTypeRoleUsersChanged, role),
		RoleCode:        role.Code,
		UserIDs:         userIDs,
		ChangedAt:       time.Now(),
	}
}
