package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/infra/config"
	"github.com/arklim/social-platform-collab/internal/infra/database"
	kafkainfra "github.com/arklim/social-platform-collab/internal/infra/kafka"
	"github.com/arklim/social-platform-collab/internal/infra/logger"
	redisinfra "github.com/arklim/social-platform-collab/internal/infra/redis"
	"github.com/arklim/social-platform-collab/internal/infra/telemetry"
	postgresrepo "github.com/arklim/social-platform-collab/internal/repository/postgres"
	redisrepo "github.com/arklim/social-platform-collab/internal/repository/redis"
	"github.com/arklim/social-platform-collab/internal/transport/http/middleware"
	"github.com/arklim/social-platform-collab/internal/transport/http/routes"
	"github.com/arklim/social-platform-collab/internal/usecase"
)

type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	producer  *kafkainfra.Producer
	tracer    *telemetry.TracerProvider
	scheduler *cron.Cron
	shares    *usecase.ShareService
	metrics   *telemetry.AccessMetrics
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	store := postgresrepo.NewStore(pool)
	repos := postgresrepo.NewRepositories(pool)
	decisionCache := redisrepo.NewDecisionCache(redisClient.Client(), cfg.Redis.DecisionPrefix)

	var (
		eventPublisher port.EventPublisher
		producer       *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	accessMetrics, err := telemetry.NewAccessMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("init access metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	groupService := usecase.NewGroupService(
		store.RunGroupTx,
		repos.Groups,
		repos.Members,
		repos.Invitations,
		repos.Directory,
		eventPublisher,
	).WithDecisionCache(decisionCache).WithLogger(log)

	shareService := usecase.NewShareService(repos.Shares, repos.Projects, eventPublisher).
		WithDecisionCache(decisionCache).
		WithLogger(log)

	accessService := usecase.NewAccessService(repos.Projects, repos.Shares, repos.Members).
		WithDecisionCache(decisionCache, cfg.Cache.DecisionTTL).
		WithMetrics(accessMetrics).
		WithLogger(log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		HTTPMetrics: httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Groups: groupService,
			Shares: shareService,
			Access: accessService,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		producer:  producer,
		tracer:    tracer,
		scheduler: cron.New(),
		shares:    shareService,
		metrics:   accessMetrics,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	if err := a.scheduleHousekeeping(ctx); err != nil {
		return err
	}
	a.scheduler.Start()
	defer a.scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting collaboration API",
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
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// scheduleHousekeeping registers the periodic purge of long-expired shares.
func (a *Application) scheduleHousekeeping(ctx context.Context) error {
	schedule := a.cfg.Housekeeping.PurgeSchedule
	if schedule == "" {
		schedule = "@hourly"
	}
	retention := a.cfg.Housekeeping.ShareRetention

	_, err := a.scheduler.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		purged, err := a.shares.PurgeExpired(sweepCtx, retention)
		if err != nil {
			a.logger.Warn("expired share sweep failed", zap.Error(err))
			return
		}
		a.metrics.CountSharesPurged(purged)
	})
	if err != nil {
		return fmt.Errorf("schedule share purge: %w", err)
	}

	return nil
}
