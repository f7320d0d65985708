package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence contract for user accounts.
// Implementations are tenant-aware: lookups by username, email or
// phone resolve within the tenant carried on the context.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)

	// FindAll returns one page of users plus the total match count.
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	// FindByRoleID returns every user holding the given role.
	FindByRoleID(ctx context.Context, roleID uuid.UUID) ([]*User, error)

	// Uniqueness probes used before creating or renaming accounts.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SaveUserRoles replaces the user's role assignments with the
	// ones currently on the aggregate.
	SaveUserRoles(ctx context.Context, user *User) error

	// LoadUserRoles populates the aggregate's role assignments from
	// the join table.
	LoadUserRoles(ctx context.Context, user *User) error

	// Count returns the number of users in the tenant.
	Count(ctx context.Context) (int64, error)
}

// UserFilter narrows and pages user list queries. Build one with
// NewUserFilter and the With* chain.
type UserFilter struct {
	// Keyword matches against username, email and display name.
	Keyword string

	Status *UserStatus
	RoleID *uuid.UUID

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewUserFilter returns the defaults used by the user list endpoint:
// first page of twenty, newest accounts first.
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

func (f UserFilter) WithKeyword(keyword string) UserFilter {
	f.Keyword = keyword
	return f
}

func (f UserFilter) WithStatus(status UserStatus) UserFilter {
	f.Status = &status
	return f
}

func (f UserFilter) WithRoleID(roleID uuid.UUID) UserFilter {
	f.RoleID = &roleID
	return f
}

func (f UserFilter) WithPagination(page, pageSize int) UserFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

func (f UserFilter) WithSorting(sortBy, sortOrder string) UserFilter {
	f.SortBy = sortBy
	f.SortOrder = sortOrder
	return f
}

// Offset converts the 1-based page number into a row offset.
func (f UserFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit caps the page size at 100 rows and falls back to 20 when the
// requested size is not positive.
func (f UserFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	return min(f.PageSize, 100)
}
