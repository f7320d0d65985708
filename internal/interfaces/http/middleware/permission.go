package middleware

import (
	"net/http"
	"strings"

	"github.com/indentflow/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig configures the permission guards.
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied replaces the default 403 response when set.
	OnDenied func(c *gin.Context, requiredPerms []string)
}

// permissionCheck decides whether the token's permissions satisfy the
// guard's requirement.
type permissionCheck func(claims *auth.Claims, permissions []string) bool

func anyOf(claims *auth.Claims, permissions []string) bool {
	return claims.HasAnyPermission(permissions...)
}

func allOf(claims *auth.Claims, permissions []string) bool {
	return claims.HasAllPermissions(permissions...)
}

// guard builds the shared middleware body for all permission variants.
func guard(cfg PermissionConfig, check permissionCheck, permissions []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyPermission(c, cfg, permissions, "no authentication claims found")
			return
		}
		if !check(claims, permissions) {
			denyPermission(c, cfg, permissions, "token lacks required permission")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Permission check passed",
				zap.String("user_id", claims.UserID),
				zap.Strings("required", permissions),
			)
		}
		c.Next()
	}
}

// RequirePermission guards a route behind a single permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequirePermissionWithConfig guards a route behind a single permission.
func RequirePermissionWithConfig(permission string, cfg PermissionConfig) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(cfg, permission)
}

// RequireAnyPermission lets the request through when the token carries at
// least one of the listed permissions.
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig is RequireAnyPermission with logging and
// a custom denial hook.
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return guard(cfg, anyOf, permissions)
}

// RequireAllPermissions lets the request through only when the token
// carries every listed permission.
func RequireAllPermissions(permissions ...string) gin.HandlerFunc {
	return RequireAllPermissionsWithConfig(PermissionConfig{}, permissions...)
}

// RequireAllPermissionsWithConfig is RequireAllPermissions with logging
// and a custom denial hook.
func RequireAllPermissionsWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return guard(cfg, allOf, permissions)
}

// RequireResource derives the required permission from the HTTP method:
// GET needs resource:read, POST resource:create, PUT and PATCH
// resource:update, DELETE resource:delete.
func RequireResource(resource string) gin.HandlerFunc {
	return RequireResourceWithConfig(resource, PermissionConfig{})
}

// RequireResourceWithConfig is RequireResource with logging and a custom
// denial hook.
func RequireResourceWithConfig(resource string, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		permission := resource + ":" + methodToAction(c.Request.Method)
		guard(cfg, anyOf, []string{permission})(c)
	}
}

// RequireResourceAction guards a route behind an explicit resource:action
// permission.
func RequireResourceAction(resource, action string) gin.HandlerFunc {
	return RequirePermission(resource + ":" + action)
}

func methodToAction(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

func denyPermission(c *gin.Context, cfg PermissionConfig, requiredPerms []string, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredPerms)
		return
	}

	if cfg.Logger != nil {
		userID, userPerms := "", []string{}
		if claims := GetJWTClaims(c); claims != nil {
			userID, userPerms = claims.UserID, claims.Permissions
		}
		cfg.Logger.Warn("Permission denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.Strings("required_permissions", requiredPerms),
			zap.Strings("user_permissions", userPerms),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient permissions",
		},
	})
}
