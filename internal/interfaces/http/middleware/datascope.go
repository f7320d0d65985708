// Package middleware provides the HTTP middleware chain for the indent
// workflow API: authentication, permission guards, data scoping, rate
// limiting, and request hygiene.
package middleware

import (
	"net/http"
	"strings"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/infrastructure/persistence/datascope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys populated by the data scope middleware.
const (
	DataScopeFilterKey = "data_scope_filter"
	UserRolesKey       = "user_roles"
)

// DataScopeMiddlewareConfig configures role loading for data scoping.
type DataScopeMiddlewareConfig struct {
	RoleRepository   identity.RoleRepository
	SkipPaths        []string
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultDataScopeConfig skips the same unauthenticated endpoints as the
// JWT middleware.
func DefaultDataScopeConfig(roleRepo identity.RoleRepository) DataScopeMiddlewareConfig {
	return DataScopeMiddlewareConfig{
		RoleRepository: roleRepo,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// DataScopeMiddleware loads the caller's roles and data scopes into the
// request. It must run after JWTAuthMiddleware.
func DataScopeMiddleware(roleRepo identity.RoleRepository) gin.HandlerFunc {
	return DataScopeMiddlewareWithConfig(DefaultDataScopeConfig(roleRepo))
}

// DataScopeMiddlewareWithConfig builds the row-level filter from the
// caller's roles. Lookup failures degrade to unfiltered access rather
// than failing the request; the permission guards still apply.
func DataScopeMiddlewareWithConfig(cfg DataScopeMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		roleIDs := parseUUIDs(GetJWTRoleIDs(c))
		if len(roleIDs) == 0 {
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(GetJWTTenantID(c))
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Invalid tenant ID in JWT", zap.Error(err))
			}
			c.Next()
			return
		}

		ctx := c.Request.Context()
		rolePtrs, err := cfg.RoleRepository.FindByIDs(ctx, roleIDs)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to load roles for data scope",
					zap.Error(err),
					zap.String("tenant_id", tenantID.String()),
				)
			}
			c.Next()
			return
		}

		roles := make([]identity.Role, 0, len(rolePtrs))
		for _, rolePtr := range rolePtrs {
			if rolePtr == nil || rolePtr.TenantID != tenantID {
				continue
			}
			if err := cfg.RoleRepository.LoadPermissionsAndDataScopes(ctx, rolePtr); err != nil && cfg.Logger != nil {
				cfg.Logger.Warn("Failed to load data scopes for role",
					zap.Error(err),
					zap.String("role_id", rolePtr.ID.String()),
				)
			}
			roles = append(roles, *rolePtr)
		}

		c.Set(UserRolesKey, roles)
		c.Set(DataScopeFilterKey, datascope.NewFilter(ctx, roles))
		c.Request = c.Request.WithContext(datascope.WithDataScopes(ctx, roles))

		if cfg.Logger != nil {
			cfg.Logger.Debug("Data scopes loaded",
				zap.Int("role_count", len(roles)),
				zap.String("user_id", GetJWTUserID(c)),
			)
		}
		c.Next()
	}
}

func parseUUIDs(values []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		if id, err := uuid.Parse(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// GetDataScopeFilter retrieves the row-level filter, or nil when the
// request is unscoped.
func GetDataScopeFilter(c *gin.Context) *datascope.Filter {
	if filter, exists := c.Get(DataScopeFilterKey); exists {
		if f, ok := filter.(*datascope.Filter); ok {
			return f
		}
	}
	return nil
}

// GetUserRoles retrieves the caller's roles with data scopes loaded.
func GetUserRoles(c *gin.Context) []identity.Role {
	if roles, exists := c.Get(UserRolesKey); exists {
		if r, ok := roles.([]identity.Role); ok {
			return r
		}
	}
	return nil
}

// RequireDataScope rejects callers whose data scope for resource is
// narrower than minScopeType. An unscoped request always passes.
func RequireDataScope(resource string, minScopeType identity.DataScopeType, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := GetDataScopeFilter(c)
		if filter == nil {
			c.Next()
			return
		}

		actualScope := filter.GetScopeType(resource)
		if !meetsMinimumScope(actualScope, minScopeType) {
			if logger != nil {
				logger.Warn("Insufficient data scope",
					zap.String("resource", resource),
					zap.String("required", string(minScopeType)),
					zap.String("actual", string(actualScope)),
					zap.String("user_id", GetJWTUserID(c)),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_DATA_SCOPE",
					"message": "You don't have sufficient data access for this operation",
				},
			})
			return
		}
		c.Next()
	}
}

// scopeLevel orders scope breadth: self < machine < custom < department < all.
func scopeLevel(scope identity.DataScopeType) int {
	switch scope {
	case identity.DataScopeSelf:
		return 10
	case identity.DataScopeMachine:
		return 30
	case identity.DataScopeCustom:
		return 40
	case identity.DataScopeDepartment:
		return 50
	case identity.DataScopeAll:
		return 100
	default:
		return 0
	}
}

func meetsMinimumScope(actualScope, minScope identity.DataScopeType) bool {
	return scopeLevel(actualScope) >= scopeLevel(minScope)
}
