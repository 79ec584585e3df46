package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	fitterclient "github.com/riskibarqy/kz-leaderboard/external/fitter"
	"github.com/riskibarqy/kz-leaderboard/internal/config"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/points"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
	"github.com/riskibarqy/kz-leaderboard/internal/domain/store"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/fitter"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/kz-leaderboard/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/kz-leaderboard/internal/interfaces/httpapi"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/kz-leaderboard/internal/platform/resilience"
	"github.com/riskibarqy/kz-leaderboard/internal/usecase"
)

// App is the wired service: the HTTP server plus the recalculation scheduler
// that drains work produced by its handlers.
type App struct {
	Server    *http.Server
	Scheduler *usecase.RecalcScheduler
	Recalc    *usecase.RecalcService

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	st, err := a.openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	filterQueue, playerQueue, err := a.openQueues(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	scheduler := usecase.NewRecalcScheduler(usecase.RecalcSchedulerConfig{
		Workers:   cfg.RecalcWorkers,
		IdleDelay: cfg.RecalcIdleDelay,
	}, filterQueue, playerQueue, logger)

	recordSvc := usecase.NewRecordService(st, scheduler, int64(cfg.RefitThreshold), logger)
	filterSvc := usecase.NewFilterService(st.Filters(), scheduler, logger)
	leaderboardSvc := usecase.NewLeaderboardService(st, scheduler)
	recalcSvc := usecase.NewRecalcService(st, newFitter(cfg, logger), scheduler, logger)

	handler := httpapi.NewHandler(recordSvc, filterSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalToken)

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.Scheduler = scheduler
	a.Recalc = recalcSvc

	ok = true
	return a, nil
}

// Close releases storage and queue connections in reverse order of opening.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) openStore(cfg config.Config, logger *logging.Logger) (store.Store, error) {
	var st store.Store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		retry := resilience.RetryConfig{
			MaxAttempts: cfg.TxRetryAttempts,
			BaseDelay:   cfg.TxRetryBaseDelay,
		}.Normalize()
		st = postgres.NewStore(db, retry, logger)
		logger.Info("storage ready", append([]any{"driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL)}, retry.LogFields()...)...)
	default:
		st = memory.NewStore(memory.SeedFilters()...)
		logger.Info("storage ready", "driver", config.StorageMemory)
	}

	if cfg.CacheEnabled {
		st = cache.NewStore(st, cfg.CacheTTL)
	}
	return st, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, dbURLOptions{
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
		ApplicationName:             cfg.ServiceName,
	})
	db, err := otelsqlx.Open("postgres", dsn, dbTraceOptions(dsn, cfg.ServiceName)...)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (a *App) openQueues(ctx context.Context, cfg config.Config, logger *logging.Logger) (recalc.Queue, recalc.Queue, error) {
	if cfg.QueueDriver != config.QueueRedis {
		logger.Info("recalculation queues ready", "driver", config.QueueMemory)
		return jobqueue.NewMemoryQueue(), jobqueue.NewMemoryQueue(), nil
	}

	client, err := jobqueue.NewRedisClient(ctx, jobqueue.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	logger.Info("recalculation queues ready", "driver", config.QueueRedis, "addr", cfg.RedisAddr, "prefix", cfg.RedisKeyPrefix)
	return jobqueue.NewRedisQueue(client, cfg.RedisKeyPrefix, recalc.KindFilter),
		jobqueue.NewRedisQueue(client, cfg.RedisKeyPrefix, recalc.KindPlayer),
		nil
}

func newFitter(cfg config.Config, logger *logging.Logger) points.Fitter {
	if cfg.FitterMode != config.FitterHTTP {
		logger.Info("distribution fitter ready", "mode", config.FitterInProcess, "min_samples", cfg.FitterMinSamples)
		return fitter.NewInProcess(cfg.FitterMinSamples)
	}

	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.FitterCircuitEnabled,
		FailureThreshold: cfg.FitterCircuitFailureCount,
		OpenTimeout:      cfg.FitterCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.FitterCircuitHalfOpenMaxReq,
	}.Normalize()
	retry := resilience.RemoteCallRetryConfig(cfg.FitterMaxRetries)
	fields := append([]any{"mode", config.FitterHTTP, "base_url", cfg.FitterBaseURL}, breaker.LogFields()...)
	logger.Info("distribution fitter ready", append(fields, retry.LogFields()...)...)

	return fitterclient.NewClient(fitterclient.ClientConfig{
		BaseURL:        cfg.FitterBaseURL,
		Timeout:        cfg.FitterTimeout,
		MaxRetries:     cfg.FitterMaxRetries,
		Logger:         logger,
		CircuitBreaker: breaker,
	})
}
