// Package tenant keeps every GORM query inside one plant's data.
//
// Tenant IDs travel on the request context; this package turns them
// into WHERE tenant_id = ? conditions so repositories cannot read or
// write another tenant's rows by accident.
//
//	db := tenant.NewTenantDB(gormDB)
//	scoped := db.WithContext(ctx)
//	scoped.Find(&indents) // tenant filter applied automatically
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/infrastructure/logger"
)

var (
	ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")
	ErrInvalidTenantID  = errors.New("invalid tenant_id format")
)

// TenantScope is a GORM scope restricting a query to one tenant.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantScopeString is TenantScope for callers holding the ID as a
// string, e.g. straight off a JWT claim.
func TenantScopeString(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantDB hands out gorm handles pre-scoped to a tenant.
type TenantDB struct {
	db           *gorm.DB
	tenantColumn string
	required     bool
}

// Config tunes TenantDB behavior.
type Config struct {
	// TenantColumn is the tenant ID column, "tenant_id" by default.
	TenantColumn string
	// Required makes a missing tenant an error rather than an
	// unscoped query.
	Required bool
}

// DefaultConfig requires a tenant and filters on tenant_id.
func DefaultConfig() Config {
	return Config{
		TenantColumn: "tenant_id",
		Required:     true,
	}
}

// NewTenantDB wraps a gorm handle with the default configuration.
func NewTenantDB(db *gorm.DB) *TenantDB {
	return NewTenantDBWithConfig(db, DefaultConfig())
}

// NewTenantDBWithConfig wraps a gorm handle with explicit settings.
func NewTenantDBWithConfig(db *gorm.DB, cfg Config) *TenantDB {
	if cfg.TenantColumn == "" {
		cfg.TenantColumn = "tenant_id"
	}
	return &TenantDB{
		db:           db,
		tenantColumn: cfg.TenantColumn,
		required:     cfg.Required,
	}
}

// errored returns a handle that fails every operation with err. gorm
// has no way to reject a query up front, so the error is attached to
// the session and surfaces on first use.
func (t *TenantDB) errored(db *gorm.DB, err error) *gorm.DB {
	_ = db.AddError(err)
	return db
}

// WithContext returns a handle scoped to the tenant carried by ctx.
// A missing tenant yields an erroring handle when the tenant is
// required, an unscoped one otherwise.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	tenantID := logger.GetTenantID(ctx)

	if tenantID == "" {
		db := t.db.WithContext(ctx)
		if t.required {
			return t.errored(db, ErrTenantIDRequired)
		}
		return db
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		return t.errored(t.db.WithContext(ctx), ErrInvalidTenantID)
	}

	return t.db.WithContext(ctx).Scopes(TenantScopeString(tenantID))
}

// WithTenant returns a handle scoped to an explicit tenant ID, for
// callers that hold the ID directly instead of a request context.
func (t *TenantDB) WithTenant(tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		if t.required {
			return t.errored(t.db, ErrTenantIDRequired)
		}
		return t.db
	}
	return t.db.Scopes(TenantScope(tenantID))
}

// WithTenantString is WithTenant for string IDs, validating the UUID
// before it reaches the query.
func (t *TenantDB) WithTenantString(tenantID string) *gorm.DB {
	if tenantID == "" {
		if t.required {
			return t.errored(t.db, ErrTenantIDRequired)
		}
		return t.db
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		return t.errored(t.db, ErrInvalidTenantID)
	}

	return t.db.Scopes(TenantScopeString(tenantID))
}

// ForTenant combines a context and an explicit tenant into a scoped
// handle, e.g. for background jobs acting on behalf of a tenant.
func (t *TenantDB) ForTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return t.db.WithContext(ctx).Scopes(TenantScope(tenantID))
}

// Transaction runs fn inside a transaction whose queries carry the
// tenant scope from ctx.
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID := logger.GetTenantID(ctx)

	if tenantID == "" && t.required {
		return ErrTenantIDRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tenantID != "" {
			tx = tx.Scopes(TenantScopeString(tenantID))
		}
		return fn(tx)
	})
}

// Unscoped exposes the raw handle with no tenant filter. Reserved for
// platform-level operations and migrations.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}

// SetRequired returns a copy with the required flag changed.
func (t *TenantDB) SetRequired(required bool) *TenantDB {
	return &TenantDB{
		db:           t.db,
		tenantColumn: t.tenantColumn,
		required:     required,
	}
}
