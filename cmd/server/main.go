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
	"github.com/joho/godotenv"
	catalogapp "github.com/psim/backend/internal/application/catalog"
	loanapp "github.com/psim/backend/internal/application/loan"
	movementapp "github.com/psim/backend/internal/application/movement"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/cache"
	"github.com/psim/backend/internal/infrastructure/config"
	"github.com/psim/backend/internal/infrastructure/event"
	"github.com/psim/backend/internal/infrastructure/logger"
	"github.com/psim/backend/internal/infrastructure/persistence"
	"github.com/psim/backend/internal/infrastructure/scheduler"
	"github.com/psim/backend/internal/infrastructure/telemetry"
	"github.com/psim/backend/internal/interfaces/http/handler"
	"github.com/psim/backend/internal/interfaces/http/middleware"
	"github.com/psim/backend/internal/interfaces/http/router"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, withEnabled(otelCfg, cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled), nil)
	if err != nil {
		panic("Failed to initialize log export: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}, logProvider.ZapCore(cfg.Telemetry.ServiceName, zapcore.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting store ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("timezone", cfg.Ledger.Location().String()),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Config:         withEnabled(otelCfg, cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled),
		ExportInterval: cfg.Telemetry.MetricsExportInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Warn("Profiling unavailable", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	var httpMeter metric.Meter
	var dbMetrics *telemetry.DBMetrics
	if meters.IsEnabled() {
		httpMeter = meters.Meter(middleware.HTTPMeterName)
		if dbMetrics, err = telemetry.RegisterDBMetrics(db.DB, meters.Meter(telemetry.DBMeterName),
			cfg.Telemetry.DBSlowQueryThresh, log); err != nil {
			log.Warn("Database metrics unavailable", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	backends, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Build(ctx)
	if err != nil {
		log.Fatal("Failed to initialize redis backends", zap.Error(err))
	}

	// Repositories
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	districtRepo := persistence.NewGormDistrictRepository(db.DB)
	metricRepo := persistence.NewGormMetricRepository(db.DB)
	staffRepo := persistence.NewGormStaffRepository(db.DB)
	hqStockRepo := persistence.NewGormHQStockRepository(db.DB)
	districtStockRepo := persistence.NewGormDistrictStockRepository(db.DB)
	ivRepo := persistence.NewGormIssuanceVoucherRepository(db.DB)
	larRepo := persistence.NewGormLARVoucherRepository(db.DB)
	movementRepo := persistence.NewGormItemMovementRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	movementScope := persistence.NewGormMovementTransactionScope(db.DB)

	var ledgerMetrics *telemetry.LedgerMetrics
	if lm, err := telemetry.NewLedgerMetrics(meters.Meter("psim/ledger")); err != nil {
		log.Warn("Ledger metrics unavailable", zap.Error(err))
	} else {
		ledgerMetrics = lm
	}

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	idemCfg := shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL}
	lowStockHandler := movementapp.NewLowStockAlertHandler(log)
	overdueHandler := loanapp.NewOverdueHandler(log)
	if ledgerMetrics != nil {
		lowStockHandler.WithMetrics(ledgerMetrics)
	}
	eventBus.Subscribe(event.NewIdempotentHandler(lowStockHandler, backends.Idempotency, idemCfg, log))
	eventBus.Subscribe(event.NewIdempotentHandler(overdueHandler, backends.Idempotency, idemCfg, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	ledgerService := catalogapp.NewLedgerService(ledgerRepo)
	itemService := catalogapp.NewItemService(persistence.NewGormCatalogTransactionScope(db.DB), itemRepo)
	itemService.SetEventPublisher(eventBus)
	referenceService := catalogapp.NewReferenceService(districtRepo, metricRepo, staffRepo)

	clock := time.Now
	loc := cfg.Ledger.Location()

	stockService := movementapp.NewStockService(movementScope, itemRepo, metricRepo, districtRepo)
	issuanceService := movementapp.NewIssuanceService(movementScope, itemRepo, districtRepo, staffRepo, ivRepo, movementRepo)
	issuanceService.SetClock(clock, loc)
	issuanceService.SetEventPublisher(eventBus)
	returnService := movementapp.NewReturnService(movementScope, ivRepo, larRepo, movementRepo)
	returnService.SetClock(clock, loc)
	returnService.SetEventPublisher(eventBus)
	if ledgerMetrics != nil {
		issuanceService.SetMetrics(ledgerMetrics)
		returnService.SetMetrics(ledgerMetrics)
	}
	queryService := movementapp.NewQueryService(hqStockRepo, districtStockRepo, ivRepo, movementRepo, itemRepo)

	loanService := loanapp.NewLoanService(loanRepo, itemRepo, log)
	loanService.SetClock(clock)
	loanService.SetEventPublisher(eventBus)

	// Background scans
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(scheduler.Config{
			LockTTL:    cfg.Scheduler.LockTTL,
			JobTimeout: cfg.Scheduler.JobTimeout,
			Location:   loc,
		}, backends.Locker, log)
		var recorder scheduler.OverdueRecorder
		if ledgerMetrics != nil {
			recorder = ledgerMetrics
		}
		for _, job := range []scheduler.Job{
			scheduler.NewLowStockScanJob(cfg.Scheduler.LowStockCron, queryService, log),
			scheduler.NewOverdueLoanScanJob(cfg.Scheduler.OverdueLoansCron, loanService, recorder, log),
		} {
			if err := jobs.Register(job); err != nil {
				log.Fatal("Failed to register job", zap.String("job", job.Name), zap.Error(err))
			}
		}
		jobs.Start()
	}

	// HTTP
	var rateLimiter *limiter.Limiter
	if cfg.HTTP.RateLimitEnabled {
		rl, err := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, backends.Client)
		if err != nil {
			log.Fatal("Failed to initialize rate limiter", zap.Error(err))
		}
		rateLimiter = rl
	}

	checks := map[string]handler.Checker{
		"database": db.Ping,
	}
	if backends.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return backends.Client.Ping(ctx).Err()
		}
	}

	engine, err := router.NewEngine(router.Handlers{
		Catalog:  handler.NewCatalogHandler(ledgerService, itemService, referenceService),
		Stock:    handler.NewStockHandler(stockService, queryService),
		HQ:       handler.NewVoucherHandler(movement.TierHQ, issuanceService, returnService, queryService),
		District: handler.NewVoucherHandler(movement.TierDistrict, issuanceService, returnService, queryService),
		Loans:    handler.NewLoanHandler(loanService),
		Health:   handler.NewHealthHandler(cfg.App.Name, version, checks, log),
	}, router.Options{
		HTTP:              cfg.HTTP,
		ServiceName:       cfg.Telemetry.ServiceName,
		TracingEnabled:    tracer.IsEnabled(),
		Meter:             httpMeter,
		Logger:            log,
		RateLimiter:       rateLimiter,
		Idempotency:       backends.Idempotency,
		IdempotencyConfig: idemCfg,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := backends.Close(); err != nil {
		log.Warn("Error closing redis backends", zap.Error(err))
	}
	if err := dbMetrics.Stop(); err != nil {
		log.Warn("Error stopping database metrics", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if profiler != nil {
		_ = profiler.Stop()
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"meter":  meters.Shutdown,
		"tracer": tracer.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func withEnabled(cfg telemetry.Config, enabled bool) telemetry.Config {
	cfg.Enabled = enabled
	return cfg
}
