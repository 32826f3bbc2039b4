package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/core/port"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/config"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/database"
	kafkainfra "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/kafka"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/logger"
	redisinfra "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/redis"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/security"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/infra/telemetry"
	memoryrepo "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/repository/memory"
	postgresrepo "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/repository/postgres"
	redisrepo "github.com/Kashawn-Brown/Career-Tracker-sub001/internal/repository/redis"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/middleware"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/transport/http/routes"
	"github.com/Kashawn-Brown/Career-Tracker-sub001/internal/usecase"
)

type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	kafka   *kafkainfra.Producer
	janitor *usecase.Janitor
	tracer  *telemetry.TracerProvider
}

// New wires the request-gating service together. Endpoints guarded by the
// gates are supplied by the embedding application; passing an empty set is
// valid and leaves only the issuance, status and operational routes mounted.
func New(ctx context.Context, cfg *config.AppConfig, endpoints routes.ProtectedEndpoints) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var tracer *telemetry.TracerProvider
	if cfg.Telemetry.OTLPEndpoint != "" {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
	}

	app := &Application{cfg: cfg, logger: log, tracer: tracer}

	store, err := app.buildAttemptStore(cfg, log)
	if err != nil {
		app.closeResources()
		return nil, err
	}

	limiter, err := usecase.NewLimiter(store, log)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("init limiter: %w", err)
	}

	app.janitor = usecase.NewJanitor(store, cfg.Gate.JanitorInterval, cfg.Gate.RetentionHorizon, log)

	codec, err := buildCSRFCodec(cfg.CSRF)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("init csrf codec: %w", err)
	}

	auditLog, err := app.buildAuditLog(ctx, cfg, log)
	if err != nil {
		app.closeResources()
		return nil, err
	}

	publisher := app.buildAuditPublisher(cfg, log)
	recorder := usecase.NewAuditRecorder(publisher, auditLog, log)

	metrics, err := middleware.NewGateMetrics(middleware.GateMetricsOptions{})
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("init gate metrics: %w", err)
	}

	gates, err := middleware.NewGates(limiter, codec, log,
		middleware.WithAudit(recorder),
		middleware.WithMetrics(metrics),
	)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("init gates: %w", err)
	}

	var dbChecker routes.DatabaseChecker
	if app.pool != nil {
		dbChecker = app.pool
	}
	var cacheChecker routes.CacheChecker
	if app.redis != nil {
		cacheChecker = app.redis
	}

	app.engine = routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Gates:     gates,
		Endpoints: endpoints,
		Database:  dbChecker,
		Cache:     cacheChecker,
	})

	return app, nil
}

func (a *Application) buildAttemptStore(cfg *config.AppConfig, log *zap.Logger) (port.AttemptStore, error) {
	if cfg.Gate.Store != "redis" {
		log.Info("using in-memory attempt store")
		return memoryrepo.NewAttemptStore(), nil
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	a.redis = redisClient

	ttl := cfg.Gate.RetentionHorizon * 2
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}

	log.Info("using redis attempt store", zap.String("key_prefix", cfg.Redis.KeyPrefix))
	return redisrepo.NewAttemptStore(redisClient.Client(), redisrepo.AttemptStoreConfig{
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       ttl,
	}), nil
}

func (a *Application) buildAuditLog(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (port.AuditLog, error) {
	if !cfg.Audit.Persist {
		return nil, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool

	return postgresrepo.NewAuditLogRepository(pool), nil
}

func (a *Application) buildAuditPublisher(cfg *config.AppConfig, log *zap.Logger) port.AuditPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log)
	}
	a.kafka = producer

	log.Info("kafka audit publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	return kafkainfra.NewAuditPublisher(producer, cfg.App, log)
}

func buildCSRFCodec(cfg config.CSRFSettings) (port.CSRFTokenCodec, error) {
	if cfg.Scheme == "hmac" {
		return security.NewHMACCSRFCodec(cfg.Secret)
	}
	return security.NewCSRFCodec(), nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.closeResources()

	a.janitor.Start()
	defer a.janitor.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting request gate API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		if a.tracer != nil {
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func (a *Application) closeResources() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			a.logger.Warn("kafka producer close failed", zap.Error(err))
		}
		a.kafka = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
