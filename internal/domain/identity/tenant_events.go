package identity

import (
	"github.com/indentflow/backend/internal/domain/shared"
)

const AggregateTypeTenant = "Tenant"

// Event types raised by the Tenant aggregate.
const (
	EventTypeTenantCreated       = "TenantCreated"
	EventTypeTenantUpdated       = "TenantUpdated"
	EventTypeTenantStatusChanged = "TenantStatusChanged"
	EventTypeTenantPlanChanged   = "TenantPlanChanged"
	EventTypeTenantDeleted       = "TenantDeleted"
)

// A tenant is its own tenant scope, so the event's aggregate ID and
// tenant ID coincide.
func tenantEvent(eventType string, tenant *Tenant) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeTenant, tenant.ID, tenant.ID)
}

// TenantCreatedEvent is raised when a tenant is provisioned.
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Status TenantStatus `json:"status"`
	Plan   TenantPlan   `json:"plan"`
}

func NewTenantCreatedEvent(tenant *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: tenantEvent(EventTypeTenantCreated, tenant),
		Code:            tenant.Code,
		Name:            tenant.Name,
		Status:          tenant.Status,
		Plan:            tenant.Plan,
	}
}

// TenantUpdatedEvent is raised when a tenant's profile changes.
type TenantUpdatedEvent struct {
	shared.BaseDomainEvent
	Code         string `json:"code"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

func NewTenantUpdatedEvent(tenant *Tenant) *TenantUpdatedEvent {
	return &TenantUpdatedEvent{
		BaseDomainEvent: tenantEvent(EventTypeTenantUpdated, tenant),
		Code:            tenant.Code,
		Name:            tenant.Name,
		ShortName:       tenant.ShortName,
		ContactName:     tenant.ContactName,
		ContactPhone:    tenant.ContactPhone,
		ContactEmail:    tenant.ContactEmail,
	}
}

// TenantStatusChangedEvent is raised on any status transition.
type TenantStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string       `json:"code"`
	OldStatus TenantStatus `json:"old_status"`
	NewStatus TenantStatus `json:"new_status"`
}

func NewTenantStatusChangedEvent(tenant *Tenant, oldStatus, newStatus TenantStatus) *TenantStatusChangedEvent {
	return &TenantStatusChangedEvent{
		BaseDomainEvent: tenantEvent(EventTypeTenantStatusChanged, tenant),
		Code:            tenant.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// TenantPlanChangedEvent is raised when a tenant moves between
// subscription plans.
type TenantPlanChangedEvent struct {
	shared.BaseDomainEvent
	Code    string     `json:"code"`
	OldPlan TenantPlan `json:"old_plan"`
	NewPlan TenantPlan `json:"new_plan"`
}

func NewTenantPlanChangedEvent(tenant *Tenant, oldPlan, newPlan TenantPlan) *TenantPlanChangedEvent {
	return &TenantPlanChangedEvent{
		BaseDomainEvent: tenantEvent(EventTypeTenantPlanChanged, tenant),
		Code:            tenant.Code,
		OldPlan:         oldPlan,
		NewPlan:         newPlan,
	}
}

// TenantDeletedEvent is raised when a tenant is removed.
type TenantDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewTenantDeletedEvent(tenant *Tenant) *TenantDeletedEvent {
	return &TenantDeletedEvent{
		BaseDomainEvent: tenantEvent(EventTypeTenantDeleted, tenant),
		Code:            tenant.Code,
		Name:            tenant.Name,
	}
}
