package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/ecsledger/backend/internal/application/identity"
	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/auth"
	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/ecsledger/backend/internal/infrastructure/logger"
	"github.com/ecsledger/backend/internal/infrastructure/persistence"
	"github.com/ecsledger/backend/internal/infrastructure/storage"
	"github.com/ecsledger/backend/internal/infrastructure/telemetry"
	"github.com/ecsledger/backend/internal/interfaces/http/handler"
	"github.com/ecsledger/backend/internal/interfaces/http/middleware"
	"github.com/ecsledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			ECS Ledger API
//	@version		1.0
//	@description	Bookkeeping ledger for client and vendor engagements

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						session

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap logger for telemetry setup; replaced once the logs bridge exists
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}

	log := bootLog
	if logProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logProvider, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting ECS ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		Types:             cfg.Telemetry.ProfilingTypes,
		Tags:              map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// sqlite has no migration set; postgres schemas come from cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to access connection pool", zap.Error(err))
		}
		if _, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		}
	}

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	packageRepo := persistence.NewGormPackageRepository(db.DB)
	chargeRepo := persistence.NewGormChargeRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	objectStorage := newObjectStorage(ctx, cfg, log)

	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		revocations = auth.NewRedisRevocationList(redisClient)
		log.Info("Session revocations stored in redis", zap.String("addr", cfg.Redis.Addr()))
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Application services
	propagator := ledgerapp.NewPropagator(packageRepo, companyRepo, ledgerMetrics, log)
	companyService := ledgerapp.NewCompanyService(companyRepo, log)
	packageService := ledgerapp.NewPackageService(packageRepo, propagator, log)
	chargeService := ledgerapp.NewEntryService(chargeRepo, propagator, ledgerMetrics, log)
	paymentService := ledgerapp.NewEntryService(paymentRepo, propagator, ledgerMetrics, log)
	balanceService := ledgerapp.NewBalanceService(chargeRepo, paymentRepo, companyRepo, propagator, ledgerMetrics, log)
	documentService := ledgerapp.NewDocumentService(documentRepo, objectStorage, propagator, ledgerMetrics, log)
	documentConfig := ledgerapp.DefaultDocumentServiceConfig()
	if cfg.HTTP.MaxUploadSize > 0 {
		documentConfig.MaxUploadSize = cfg.HTTP.MaxUploadSize
	}
	if cfg.Storage.PresignExpiration > 0 {
		documentConfig.DownloadURLExpiry = cfg.Storage.PresignExpiration
	}
	documentService.SetConfig(documentConfig)

	sessions := auth.NewSessionService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, sessions, revocations, log)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.Cookie),
		Companies: handler.NewCompanyHandler(companyService, balanceService),
		Packages:  handler.NewPackageHandler(packageService, balanceService),
		Charges:   handler.NewEntryHandler(chargeService),
		Payments:  handler.NewEntryHandler(paymentService),
		Documents: handler.NewDocumentHandler(documentService),
		Stats:     handler.NewStatsHandler(balanceService),
		System:    handler.NewSystemHandler(db, cfg.App.Name, version),
	}

	middleware.SetupValidator()
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.Session(middleware.SessionConfig{
		Sessions:    sessions,
		Revocations: revocations,
		CookieName:  cfg.Cookie.Name,
		Logger:      log,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Profiling(profiler.IsEnabled()))

	engine.GET("/health", handlers.System.Health)
	if cfg.Storage.Type == "stub" {
		engine.Static("/static/uploads", cfg.Storage.LocalDir)
	}

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateWindow)
	go authLimiter.Run(ctx)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	// The upload cap covers the file plus the ordinary allowance for the
	// other multipart fields; the document service enforces the file size.
	r.Register(router.LedgerGroups(handlers, router.RouteLimits{
		Auth:   middleware.RateLimit(authLimiter),
		Body:   middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		Upload: middleware.BodyLimit(documentConfig.MaxUploadSize + cfg.HTTP.MaxBodySize),
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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage picks S3 unless the stub backend is configured
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) ledgerapp.ObjectStorage {
	if cfg.Storage.Type == "stub" {
		if err := os.MkdirAll(cfg.Storage.LocalDir, 0o755); err != nil {
			log.Fatal("Failed to create upload directory", zap.Error(err))
		}
		log.Info("Documents stored on local disk", zap.String("dir", cfg.Storage.LocalDir))
		return storage.NewStubObjectStorage(cfg.Storage.LocalDir, cfg.Storage.BaseURL)
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare storage bucket", zap.Error(err))
	}
	log.Info("Documents stored in S3", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage
}
