package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentflow/backend/internal/application/rental"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/cache"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/infrastructure/event"
	"github.com/rentflow/backend/internal/infrastructure/export"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/infrastructure/persistence"
	"github.com/rentflow/backend/internal/infrastructure/storage"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"github.com/rentflow/backend/internal/interfaces/http/handler"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
	"github.com/rentflow/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Rental Billing API
//	@version		1.0
//	@description	Multi-tenant equipment rental billing: assets, contracts, invoices and measurements.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		Service:     cfg.App.Name,
		Environment: cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Telemetry comes up first so the OTLP log bridge sees startup messages
	tp, err := telemetry.NewProvider(rootCtx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = tp.AttachLogs(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting rental billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	var meter = tp.Meter(cfg.Telemetry.ServiceName)
	if !tp.MetricsEnabled() {
		meter = nil
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Repositories and the transaction scope shared by every service
	assetRepo := persistence.NewGormAssetRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	measurementRepo := persistence.NewGormMeasurementRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, cfg.Billing.NumberWidth)

	// Idempotency store: Redis when reachable, otherwise per-instance memory
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(rootCtx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus and subscribers
	promMetrics := telemetry.NewPrometheusMetrics()
	recorders := []event.BillingRecorder{promMetrics}
	var billingMetrics *telemetry.BillingMetrics
	if meter != nil {
		billingMetrics, err = telemetry.NewBillingMetrics(telemetry.BillingMetricsConfig{
			Meter:     meter,
			Logger:    log,
			Snapshots: telemetry.NewGormSnapshotProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create billing metrics", zap.Error(err))
		}
		billingMetrics.StartPeriodicCollection(rootCtx)
		defer billingMetrics.Stop()
		recorders = append(recorders, billingMetrics)
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	eventBus.Subscribe(event.NewDeduplicatingHandler(
		event.NewMetricsHandler(recorders...),
		idempotencyStore,
		cfg.Billing.IdempotencyTTL,
		log,
	))
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Application services
	assetService := rental.NewAssetService(assetRepo, txScope, log)
	assetService.SetEventPublisher(eventBus)
	contractService := rental.NewContractService(contractRepo, txScope, log)
	contractService.SetEventPublisher(eventBus)
	invoiceService := rental.NewInvoiceService(invoiceRepo, txScope, log)
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetOverdueOnRead(cfg.Billing.OverdueOnRead)
	measurementService := rental.NewMeasurementService(measurementRepo, txScope, log)
	measurementService.SetEventPublisher(eventBus)

	renderer := export.NewRenderer(export.Config{
		CompanyName: cfg.App.Name,
		Currency:    cfg.Billing.CurrencySymbol,
		Locale:      cfg.Billing.Locale,
	})
	exportService := rental.NewExportService(invoiceRepo, measurementRepo, renderer,
		newObjectStorage(cfg, log), cfg.Storage.PresignExpiration, log)

	// Token validation and revocation
	validator := auth.NewTokenValidator(cfg.JWT)
	var revocations auth.RevocationList
	if redisClient, err := cache.NewRedisClient(rootCtx, cfg.Redis); err == nil {
		revocations = auth.NewRedisRevocationList(redisClient)
		defer func() {
			_ = redisClient.Close()
		}()
	} else {
		log.Warn("Redis unavailable, token revocations are tracked in memory", zap.Error(err))
		revocations = auth.NewMemoryRevocationList()
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
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
	// 8. Tracing and Metrics - request spans and Prometheus counters
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tp.TracingEnabled()))
	engine.Use(middleware.Metrics(promMetrics))

	// Unauthenticated endpoints
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	engine.GET("/health", handler.NewSystemHandler(sqlDB, telemetry.ServiceVersion).Health)
	engine.GET(cfg.HTTP.MetricsPath, gin.WrapH(promMetrics.Handler()))

	// Versioned API: authenticate, resolve the tenant, then guard replays
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuth(middleware.JWTConfig{Validator: validator, Revocations: revocations, Logger: log}),
		middleware.TenantScope(log),
		middleware.SpanEnricher(),
	)
	if cfg.Billing.IdempotencyEnabled {
		r.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Billing.IdempotencyTTL,
			Logger: log,
		}))
	}
	r.Register(router.RentalGroups(router.Handlers{
		Asset:       handler.NewAssetHandler(assetService),
		Contract:    handler.NewContractHandler(contractService),
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		Measurement: handler.NewMeasurementHandler(measurementService),
		Export:      handler.NewExportHandler(exportService),
	})...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRoot()
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage returns the S3 store when enabled, otherwise an in-memory
// store so invoice publishing still works in development.
func newObjectStorage(cfg *config.Config, log *zap.Logger) rental.ObjectStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, published documents are kept in memory")
		return storage.NewMemoryObjectStorage("")
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	return s3
}
