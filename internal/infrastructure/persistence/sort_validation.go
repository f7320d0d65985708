package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Per-entity whitelists below. Sort fields arrive straight from query
// strings, so anything outside its whitelist is discarded before it can
// reach an ORDER BY clause.

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"short_name": true,
	"status":     true,
	"plan":       true,
	"expires_at": true,
}

// RoleSortFields contains allowed sort fields for roles
var RoleSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"sort_order":     true,
	"is_enabled":     true,
	"is_system_role": true,
}

// MaterialIndentSortFields contains allowed sort fields for material indents
var MaterialIndentSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"indent_number":      true,
	"request_date":       true,
	"status":             true,
	"requester_id":       true,
	"requester_name":     true,
	"approver_name":      true,
	"approved_at":        true,
	"submitted_at":       true,
	"ordered_at":         true,
	"closed_at":          true,
	"resubmission_count": true,
}

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"code":            true,
	"name":            true,
	"category":        true,
	"unit":            true,
	"current_stock":   true,
	"min_stock_level": true,
	"is_active":       true,
}

// MachineSortFields contains allowed sort fields for machines
var MachineSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"location":   true,
	"is_active":  true,
}
