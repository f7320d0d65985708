package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appevent "github.com/indentflow/backend/internal/application/event"
	identityapp "github.com/indentflow/backend/internal/application/identity"
	inventoryapp "github.com/indentflow/backend/internal/application/inventory"
	procurementapp "github.com/indentflow/backend/internal/application/procurement"
	"github.com/indentflow/backend/internal/infrastructure/auth"
	"github.com/indentflow/backend/internal/infrastructure/cache"
	"github.com/indentflow/backend/internal/infrastructure/config"
	"github.com/indentflow/backend/internal/infrastructure/event"
	"github.com/indentflow/backend/internal/infrastructure/logger"
	"github.com/indentflow/backend/internal/infrastructure/persistence"
	"github.com/indentflow/backend/internal/infrastructure/storage"
	"github.com/indentflow/backend/internal/infrastructure/telemetry"
	"github.com/indentflow/backend/internal/interfaces/http/handler"
	"github.com/indentflow/backend/internal/interfaces/http/middleware"
	"github.com/indentflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize distributed tracing; a disabled config yields a no-op provider
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	// Database span generation rides on the request spans from the HTTP layer
	dbTracingConfig := telemetry.DefaultDBTracingConfig()
	dbTracingConfig.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTracingEnabled
	dbTracingConfig.LogFullSQL = cfg.Telemetry.LogFullSQL
	if err := telemetry.NewDBTracingPlugin(dbTracingConfig, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	indentRepo := persistence.NewGormIndentRepository(db.DB)
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	machineRepo := persistence.NewGormMachineRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	// Events raised by aggregates are persisted in the same transaction
	// as the aggregate itself and delivered by the outbox processor
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	indentRepo.SetOutboxEventSaver(outboxPublisher)

	// Initialize object storage for quotation files and item images
	var objectStorage procurementapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage bucket not configured, using in-memory stub")
	}

	// Initialize application services
	indentService := procurementapp.NewIndentService(indentRepo)
	attachmentService := procurementapp.NewAttachmentService(indentRepo, objectStorage)
	materialService := inventoryapp.NewMaterialService(materialRepo, machineRepo)
	outboxService := appevent.NewOutboxService(outboxRepo, log)

	// Material read cache: Redis when reachable, in-memory otherwise
	materialCache, err := cache.NewRedisMaterialCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory material cache", zap.Error(err))
		materialService.SetCache(cache.NewInMemoryMaterialCache())
	} else {
		materialService.SetCache(materialCache)
	}

	// Token blacklist for logout, Redis-backed with in-memory fallback
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, userRepo, log)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	// Initialize event bus for cross-context event handling
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store so replayed outbox entries are not applied twice
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Register cross-context event handlers
	// Receipt recorded -> material stock replenishment
	receiptStockHandler := inventoryapp.NewReceiptStockHandler(materialService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(receiptStockHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("receipt_recorded_events", receiptStockHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery
	// The outbox processor reads events from the outbox_events table and publishes them to the event bus
	outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
	}
	outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
	}
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	} else {
		log.Warn("Outbox processor disabled, stored events will not be delivered")
	}

	// Initialize HTTP handlers
	indentHandler := handler.NewIndentHandler(indentService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)
	materialHandler := handler.NewMaterialHandler(materialService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Enrich request spans with tenant/user attributes from JWT claims
	r.Use(middleware.TracingAttributeInjector())

	// Row-level data scoping; must run after JWT auth so role IDs are available
	r.Use(middleware.DataScopeMiddleware(roleRepo))

	// Register domain route groups

	// Procurement domain (material indents)
	procurementRoutes := router.NewDomainGroup("procurement", "/procurement")
	procurementRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "procurement service ready"})
	})

	// Indent routes
	procurementRoutes.POST("/indents", indentHandler.Create)
	procurementRoutes.GET("/indents", indentHandler.List)
	procurementRoutes.GET("/indents/mine", indentHandler.ListMine)
	procurementRoutes.GET("/indents/pending-receipt", indentHandler.ListPendingReceipt)
	procurementRoutes.GET("/indents/stats/summary", indentHandler.StatusSummary)
	procurementRoutes.GET("/indents/number/:number", indentHandler.GetByNumber)
	procurementRoutes.GET("/indents/:id", indentHandler.GetByID)
	procurementRoutes.PUT("/indents/:id", indentHandler.Update)
	procurementRoutes.DELETE("/indents/:id", indentHandler.Delete)

	// Indent item routes
	procurementRoutes.POST("/indents/:id/items", indentHandler.AddItem)
	procurementRoutes.PUT("/indents/:id/items/:item_id", indentHandler.UpdateItem)
	procurementRoutes.DELETE("/indents/:id/items/:item_id", indentHandler.RemoveItem)

	// Vendor quotation routes
	procurementRoutes.POST("/indents/:id/items/:item_id/quotations", indentHandler.AddQuotation)
	procurementRoutes.DELETE("/indents/:id/items/:item_id/quotations/:quotation_id", indentHandler.RemoveQuotation)

	// Workflow transitions
	procurementRoutes.POST("/indents/:id/submit", indentHandler.Submit)
	procurementRoutes.POST("/indents/:id/approve", indentHandler.Approve)
	procurementRoutes.POST("/indents/:id/reject", indentHandler.Reject)
	procurementRoutes.POST("/indents/:id/revert", indentHandler.Revert)
	procurementRoutes.POST("/indents/:id/resubmit", indentHandler.Resubmit)
	procurementRoutes.POST("/indents/:id/mark-ordered", indentHandler.MarkOrdered)
	procurementRoutes.POST("/indents/:id/receipts", indentHandler.RecordReceipt)
	procurementRoutes.POST("/indents/:id/close", indentHandler.Close)

	// Attachment routes (presigned upload/download)
	procurementRoutes.POST("/attachments/item-images", attachmentHandler.InitiateItemImageUpload)
	procurementRoutes.POST("/attachments/quotation-files", attachmentHandler.InitiateQuotationFileUpload)
	procurementRoutes.POST("/attachments/confirm", attachmentHandler.ConfirmUpload)
	procurementRoutes.GET("/attachments/download-url", attachmentHandler.DownloadURL)
	procurementRoutes.DELETE("/attachments", attachmentHandler.Delete)

	// Inventory domain (materials, machines)
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "inventory service ready"})
	})

	// Material routes
	inventoryRoutes.POST("/materials", materialHandler.Create)
	inventoryRoutes.GET("/materials", materialHandler.List)
	inventoryRoutes.GET("/materials/low-stock", materialHandler.ListLowStock)
	inventoryRoutes.GET("/materials/code/:code", materialHandler.GetByCode)
	inventoryRoutes.GET("/materials/:id", materialHandler.GetByID)
	inventoryRoutes.PUT("/materials/:id", materialHandler.Update)
	inventoryRoutes.PUT("/materials/:id/stock-levels", materialHandler.SetStockLevels)
	inventoryRoutes.POST("/materials/:id/stock/adjust", materialHandler.AdjustStock)
	inventoryRoutes.DELETE("/materials/:id", materialHandler.Delete)

	// Machine routes
	inventoryRoutes.POST("/machines", materialHandler.CreateMachine)
	inventoryRoutes.GET("/machines", materialHandler.ListMachines)
	inventoryRoutes.GET("/machines/:id", materialHandler.GetMachine)

	// Identity domain (authentication, users, roles) - public routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)

	// Identity domain - protected routes
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "identity service ready"})
	})

	// Auth routes requiring authentication
	identityRoutes.POST("/auth/logout", authHandler.Logout)
	identityRoutes.GET("/auth/me", authHandler.GetCurrentUser)
	identityRoutes.PUT("/auth/password", authHandler.ChangePassword)

	// User management routes
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/stats/count", userHandler.Count)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)
	identityRoutes.PUT("/users/:id/roles", userHandler.AssignRoles)

	// Role management routes
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/system", roleHandler.GetSystemRoles)
	identityRoutes.GET("/roles/stats/count", roleHandler.Count)
	identityRoutes.GET("/roles/:id", roleHandler.GetByID)
	identityRoutes.GET("/roles/code/:code", roleHandler.GetByCode)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", roleHandler.SetPermissions)

	// Permission management
	identityRoutes.GET("/permissions", roleHandler.GetPermissions)

	// Tenant management routes
	identityRoutes.POST("/tenants", tenantHandler.Create)
	identityRoutes.GET("/tenants", tenantHandler.List)
	identityRoutes.GET("/tenants/stats", tenantHandler.GetStats)
	identityRoutes.GET("/tenants/stats/count", tenantHandler.Count)
	identityRoutes.GET("/tenants/:id", tenantHandler.GetByID)
	identityRoutes.GET("/tenants/code/:code", tenantHandler.GetByCode)
	identityRoutes.PUT("/tenants/:id", tenantHandler.Update)
	identityRoutes.PUT("/tenants/:id/config", tenantHandler.UpdateConfig)
	identityRoutes.PUT("/tenants/:id/plan", tenantHandler.SetPlan)
	identityRoutes.DELETE("/tenants/:id", tenantHandler.Delete)
	identityRoutes.POST("/tenants/:id/activate", tenantHandler.Activate)
	identityRoutes.POST("/tenants/:id/deactivate", tenantHandler.Deactivate)
	identityRoutes.POST("/tenants/:id/suspend", tenantHandler.Suspend)

	// Admin domain (outbox inspection and recovery)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAnyPermission("admin", "outbox:manage"))
	adminRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	adminRoutes.GET("/outbox/dead-letters", outboxHandler.GetDeadLetterEntries)
	adminRoutes.GET("/outbox/entries/:id", outboxHandler.GetEntry)
	adminRoutes.POST("/outbox/dead-letters/:id/retry", outboxHandler.RetryDeadEntry)
	adminRoutes.POST("/outbox/dead-letters/retry-all", outboxHandler.RetryAllDeadEntries)

	// Register all domain groups
	r.Register(procurementRoutes).
		Register(inventoryRoutes).
		Register(authRoutes).
		Register(identityRoutes).
		Register(adminRoutes)

	// Register system routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
