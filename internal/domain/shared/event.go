package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened in the domain and is worth
// telling other parts of the system about, e.g. an indent being
// submitted or a receipt being posted.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// VersionedEvent adds schema versioning on top of DomainEvent.
// Implement it on events whose payload shape is expected to evolve,
// so consumers can branch on the version they received.
type VersionedEvent interface {
	DomainEvent
	// SchemaVersion is the version of the event payload schema.
	// Unversioned events report 1.
	SchemaVersion() int
}

// BaseDomainEvent carries the fields every domain event shares.
// Embed it and add the payload fields of the concrete event.
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
	Version       int       `json:"schema_version,omitempty"`
}

// NewBaseDomainEvent builds an event stamped now, at schema version 1.
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return NewVersionedBaseDomainEvent(eventType, aggType, aggID, tenantID, 1)
}

// NewVersionedBaseDomainEvent builds an event with an explicit schema
// version. Versions below 1 are clamped to 1.
func NewVersionedBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID, schemaVersion int) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
		Version:       max(schemaVersion, 1),
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }

func (e *BaseDomainEvent) EventType() string { return e.Type }

func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }

func (e *BaseDomainEvent) AggregateType() string { return e.AggType }

func (e *BaseDomainEvent) TenantID() uuid.UUID { return e.TenantIDValue }

// SchemaVersion treats the zero value as version 1 so events decoded
// from payloads written before versioning existed stay valid.
func (e *BaseDomainEvent) SchemaVersion() int {
	if e.Version == 0 {
		return 1
	}
	return e.Version
}
