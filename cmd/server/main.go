package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	invoicingapp "github.com/aqueduct/backend/internal/application/invoicing"
	membershipapp "github.com/aqueduct/backend/internal/application/membership"
	meteringapp "github.com/aqueduct/backend/internal/application/metering"
	paymentapp "github.com/aqueduct/backend/internal/application/payment"
	tariffapp "github.com/aqueduct/backend/internal/application/tariff"
	"github.com/aqueduct/backend/internal/infrastructure/config"
	"github.com/aqueduct/backend/internal/infrastructure/event"
	"github.com/aqueduct/backend/internal/infrastructure/lock"
	"github.com/aqueduct/backend/internal/infrastructure/logger"
	"github.com/aqueduct/backend/internal/infrastructure/persistence"
	"github.com/aqueduct/backend/internal/infrastructure/telemetry"
	"github.com/aqueduct/backend/internal/interfaces/http/handler"
	"github.com/aqueduct/backend/internal/interfaces/http/middleware"
	"github.com/aqueduct/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		Insecure:          cfg.Telemetry.Insecure,
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := baseLog
	if loggerProvider.IsEnabled() {
		core := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
		log = telemetry.NewBridgedLogger(baseLog, core)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Aqueduct billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	locker, err := lock.NewLockerFactory(cfg.Redis, cfg.Billing,
		lock.WithLogger(log),
		lock.WithInMemoryFallback(cfg.Billing.LockAllowInMemoryFallback),
	).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create property locker", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	logHandler := event.NewLogHandler(log)
	eventBus.Subscribe(logHandler, logHandler.EventTypes()...)
	billingMetrics, err := telemetry.NewBillingMetrics(meterProvider.Meter("aqueduct/billing"), log)
	if err != nil {
		log.Fatal("Failed to register billing metrics", zap.Error(err))
	}
	eventBus.Subscribe(billingMetrics, billingMetrics.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	tariffRepo := persistence.NewGormTariffConfigRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Services
	tariffService := tariffapp.NewTariffService(tariffapp.TariffServiceConfig{
		TxScope: txScope,
		Repo:    tariffRepo,
		Logger:  log,
	})
	memberService := membershipapp.NewMemberService(membershipapp.MemberServiceConfig{
		MemberRepo:      memberRepo,
		PropertyRepo:    propertyRepo,
		Logger:          log,
		ImportMaxErrors: cfg.Billing.ImportMaxErrors,
	})
	propertyService := membershipapp.NewPropertyService(propertyRepo, memberRepo, log)
	readingService := meteringapp.NewReadingService(meteringapp.ReadingServiceConfig{
		TxScope:         txScope,
		ReadingRepo:     readingRepo,
		PropertyRepo:    propertyRepo,
		MemberRepo:      memberRepo,
		EventPublisher:  eventBus,
		Logger:          log,
		AuditThreshold:  decimal.NewFromFloat(cfg.Billing.AuditThreshold),
		ImportMaxErrors: cfg.Billing.ImportMaxErrors,
	})
	invoiceService := invoicingapp.NewInvoiceService(invoicingapp.InvoiceServiceConfig{
		TxScope:        txScope,
		ReadingRepo:    readingRepo,
		InvoiceRepo:    invoiceRepo,
		PropertyRepo:   propertyRepo,
		TariffRepo:     tariffRepo,
		Locker:         locker,
		LockTTL:        cfg.Billing.LockTTL,
		EventPublisher: eventBus,
		Logger:         log,
	})
	paymentService := paymentapp.NewPaymentService(paymentapp.PaymentServiceConfig{
		TxScope:        txScope,
		ReadingRepo:    readingRepo,
		InvoiceRepo:    invoiceRepo,
		PropertyRepo:   propertyRepo,
		MemberRepo:     memberRepo,
		TariffRepo:     tariffRepo,
		InvoicePayer:   invoiceService,
		Locker:         locker,
		LockTTL:        cfg.Billing.LockTTL,
		EventPublisher: eventBus,
		Logger:         log,
		Currency:       cfg.Billing.Currency,
	})

	middleware.SetupValidator()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()),
		middleware.SpanAttributes(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if meterProvider.IsEnabled() {
		httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("aqueduct/http"))
		if err != nil {
			log.Fatal("Failed to register HTTP metrics", zap.Error(err))
		}
		engine.Use(httpMetrics)
	}

	api := router.RegisterBillingRoutes(router.NewRouter(engine), router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, version, db),
		Member:   handler.NewMemberHandler(memberService),
		Property: handler.NewPropertyHandler(propertyService, readingService, paymentService),
		Reading:  handler.NewReadingHandler(readingService, invoiceService, paymentService),
		Tariff:   handler.NewTariffHandler(tariffService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, paymentService),
		POS:      handler.NewPOSHandler(paymentService),
	})
	api.Setup()
	log.Debug("Routes registered", zap.Strings("routes", api.Routes()))

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := locker.Close(); err != nil {
		log.Error("Error closing locker", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down logger provider", zap.Error(err))
	}
}
