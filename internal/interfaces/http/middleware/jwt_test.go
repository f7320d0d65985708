package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/indentflow/backend/internal/infrastructure/auth"
	"github.com/indentflow/backend/internal/infrastructure/config"
	"github.com/indentflow/backend/internal/infrastructure/persistence/datascope"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "indentflow-test",
		MaxRefreshCount:        10,
	})
}

func newStorekeeperToken(t *testing.T, jwtService *auth.JWTService, machineIDs ...string) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "storekeeper1",
		RoleIDs:     []uuid.UUID{uuid.New()},
		Permissions: []string{"indent:read", "indent:create"},
		MachineIDs:  machineIDs,
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

// authServe sends one request through the JWT middleware to the given
// handler, with an optional bearer token.
func authServe(mw gin.HandlerFunc, token string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/indents", handler)

	req := httptest.NewRequest(http.MethodGet, "/indents", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newStorekeeperToken(t, jwtService)

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.TenantID.String(), claims.TenantID)
		okHandler(c)
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	jwtService := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authServe(JWTAuthMiddleware(jwtService), tt.token, okHandler)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  -time.Hour,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "indentflow-test",
	})
	pair, _ := newStorekeeperToken(t, jwtService)

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, okHandler)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_RefreshTokenRejectedAsAccess(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newStorekeeperToken(t, jwtService)

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.RefreshToken, okHandler)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	jwtService := newTestJWTService()
	cfg := DefaultJWTConfig(jwtService)
	cfg.SkipPaths = append(cfg.SkipPaths, "/public")
	cfg.SkipPathPrefixes = append(cfg.SkipPathPrefixes, "/static")

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	open := []string{
		"/health", "/healthz", "/ready", "/api/v1/health",
		"/api/v1/auth/login", "/api/v1/auth/refresh",
		"/public", "/static/assets/logo.png",
	}
	for _, path := range open {
		router.GET(path, okHandler)
	}

	for _, path := range open {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestJWTAuthMiddleware_ContextValues(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newStorekeeperToken(t, jwtService)

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		assert.Equal(t, input.UserID.String(), GetJWTUserID(c))
		assert.Equal(t, input.TenantID.String(), GetJWTTenantID(c))
		assert.Equal(t, input.Username, GetJWTUsername(c))
		roleIDs := GetJWTRoleIDs(c)
		require.Len(t, roleIDs, 1)
		assert.Equal(t, input.RoleIDs[0].String(), roleIDs[0])
		okHandler(c)
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_MachineScopeReachesRequestContext(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newStorekeeperToken(t, jwtService, "MC-01", "MC-02")

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		scoped := datascope.GetMachineIDsFromContext(c.Request.Context())
		assert.ElementsMatch(t, []string{"MC-01", "MC-02"}, scoped)
		okHandler(c)
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_UnrestrictedUserLeavesScopeEmpty(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newStorekeeperToken(t, jwtService)

	w := authServe(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		assert.Empty(t, datascope.GetMachineIDsFromContext(c.Request.Context()))
		okHandler(c)
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_RevokedTokenRejected(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newStorekeeperToken(t, jwtService)

	blacklist := auth.NewInMemoryTokenBlacklist()
	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist

	w := authServe(JWTAuthMiddlewareWithConfig(cfg), "Bearer "+pair.AccessToken, okHandler)
	require.Equal(t, http.StatusOK, w.Code)

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Hour))

	w = authServe(JWTAuthMiddlewareWithConfig(cfg), "Bearer "+pair.AccessToken, okHandler)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	jwtService := newTestJWTService()
	cfg := DefaultJWTConfig(jwtService)
	called := false
	cfg.OnError = func(c *gin.Context, err error) {
		called = true
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"custom": "error"})
	}

	w := authServe(JWTAuthMiddlewareWithConfig(cfg), "", okHandler)

	assert.True(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestContextGetters_EmptyContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTTenantID(c))
	assert.Empty(t, GetJWTUsername(c))
	assert.Nil(t, GetJWTRoleIDs(c))
}
