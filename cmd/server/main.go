package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/signage/backend/docs"
	integrationapp "github.com/signage/backend/internal/application/integration"
	"github.com/signage/backend/internal/infrastructure/cache"
	"github.com/signage/backend/internal/infrastructure/config"
	"github.com/signage/backend/internal/infrastructure/logger"
	"github.com/signage/backend/internal/infrastructure/persistence"
	"github.com/signage/backend/internal/infrastructure/telemetry"
	"github.com/signage/backend/internal/interfaces/http/handler"
	"github.com/signage/backend/internal/interfaces/http/middleware"
	"github.com/signage/backend/internal/interfaces/http/router"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const meterName = "github.com/signage/backend"

//	@title			Signage Backend API
//	@version		1.0
//	@description	Attribute value resolution and integration sync for signage catalog entities

//	@host		localhost:8080
//	@BasePath	/

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdownTelemetry(log, cfg.HTTP.ShutdownTimeout, tracerProvider, meterProvider, loggerProvider)

	log = telemetry.BridgeLogger(log, cfg.Telemetry.ServiceName, loggerProvider)

	log.Info("Starting signage engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	meter := meterProvider.Meter(meterName)
	engineMetrics, err := telemetry.NewEngineMetrics(meter, log)
	if err != nil {
		log.Warn("Engine metrics disabled", zap.Error(err))
	}
	recorder := integrationapp.NewMetricsRecorder(engineMetrics)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Caches
	recordCache, err := cache.NewRecordCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create record cache", zap.Error(err))
	}
	if closer, ok := recordCache.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Error closing record cache", zap.Error(err))
			}
		}()
	}

	// Repositories and services
	entityRepo := persistence.NewGormEntityRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	externalCatalog := persistence.NewGormExternalCatalog(db.DB)

	fetcher := integrationapp.NewFetcher(externalCatalog, recordCache,
		integrationapp.WithFetcherLogger(log.Named("fetcher")),
		integrationapp.WithFetcherRecorder(recorder),
	)
	resolver := integrationapp.NewResolver(entityRepo, templateRepo, fetcher, cache.NewInMemoryEntityCache(),
		integrationapp.WithResolverConfig(integrationapp.ResolverConfig{
			MaxParentDepth:      cfg.Resolver.MaxParentDepth,
			SelfResolvingFields: cfg.Resolver.SelfResolvingFields,
		}),
		integrationapp.WithResolverLogger(log.Named("resolver")),
		integrationapp.WithResolverRecorder(recorder),
	)
	linkService := integrationapp.NewLinkService(entityRepo, fetcher, resolver,
		integrationapp.WithLinkServiceLogger(log.Named("link_service")),
		integrationapp.WithLinkServiceRecorder(recorder),
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		middleware.Tenant(tenantCfg),
		middleware.SpanEnricher(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(meter, log),
	)

	engine.GET("/swagger/*any",
		middleware.SwaggerAccess(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	router.NewRouter(engine).
		RegisterRoot(handler.NewHealthHandler(db)).
		Register(handler.NewResolutionHandler(resolver)).
		Register(handler.NewLinkHandler(linkService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// shutdowner is implemented by every telemetry provider
type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes and stops the providers in reverse start order
func shutdownTelemetry(log *zap.Logger, timeout time.Duration, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(providers) - 1; i >= 0; i-- {
		if err := providers[i].Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry provider", zap.Error(err))
		}
	}
}
