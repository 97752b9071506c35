package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/standpos/internal/config"
	"github.com/kirinyoku/standpos/internal/export"
	"github.com/kirinyoku/standpos/internal/postgres"
	"github.com/kirinyoku/standpos/internal/redis"
	"github.com/kirinyoku/standpos/internal/repository"
	"github.com/kirinyoku/standpos/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/standpos/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/standpos/internal/repository/redis"
	"github.com/kirinyoku/standpos/internal/service"
	"github.com/kirinyoku/standpos/internal/service/reconcile"
	httpgin "github.com/kirinyoku/standpos/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *goredis.Client
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var (
		cache   *redisrepo.Cache
		pubsub  *redisrepo.LedgerPubSub
		limiter *redisrepo.SlidingWindowLimiter
		idem    *redisrepo.IdempotencyStore
	)

	if cfg.Redis.Enabled() {
		a.rdb, err = redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		cache = redisrepo.New(a.rdb)
		pubsub = redisrepo.NewLedgerPubSub(a.rdb)
		idem = redisrepo.NewIdempotencyStore(a.rdb, cfg.Limits.IdempotencyTTL)
		if cfg.Limits.WritesPerMinute > 0 {
			limiter = redisrepo.NewSlidingWindowLimiter(a.rdb, "writes", cfg.Limits.WritesPerMinute, time.Minute)
		}
	} else {
		logger.Warn("redis disabled: no config cache, live feed, idempotency or rate limit")
	}

	exporter := export.New(cfg.Export.Dir)
	if exporter != nil {
		logger.Info("csv snapshots enabled", "dir", exporter.Dir())
	} else {
		logger.Info("csv snapshots disabled")
	}

	services := service.NewServices(store, cache, pubsub, exporter, logger, service.Config{
		Reconcile: reconcile.Config{Location: cfg.Event.Location},
	})

	router := httpgin.NewRouter(services, httpgin.Deps{
		Idempotency: idem,
		Limiter:     limiter,
		Feed:        pubsub,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	if a.cfg.Storage == config.StorageMemory {
		a.logger.Warn("using in-memory storage, sales are lost on restart")
		return memory.New(), nil
	}

	pg := a.cfg.Postgres
	dsn := postgres.DSN(pg.User, pg.Password, pg.Host, pg.Port, pg.Name, pg.SSLMode)

	if err := postgres.Migrate(dsn); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres: %w", err)
	}

	pool, err := postgres.New(ctx, postgres.Config{DSN: dsn, MaxConns: pg.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	a.pool = pool

	return postgresrepo.NewStore(pool), nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// Close releases the database pool and the redis client.
func (a *App) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
