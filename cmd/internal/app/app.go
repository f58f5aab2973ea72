// Package app wires the server runtime: config, logging, metrics, the DB
// pool, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"conduit/cmd/identity"
	"conduit/cmd/internal/api"
	"conduit/cmd/internal/articles"
	"conduit/cmd/security/password"
	"conduit/cmd/security/token"
)

// App is the server runtime. It owns the DB pool and the HTTP server wiring.
type App struct {
	cfg Config
	log Logger

	pool    *pgxpool.Pool
	metrics *Metrics
	api     *api.Handler
}

// New constructs a fully wired App instance from config and logger.
// Missing key material or an unreachable database is fatal here; the process
// must not come up half-configured.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("app: CONDUIT_DATABASE_URL is required")
	}

	codec, err := token.LoadCodec(cfg.RSAPrivateKeyPath, cfg.RSAPublicKeyPath, cfg.SessionLength)
	if err != nil {
		return nil, err
	}

	params, err := password.ParamsFromEnv()
	if err != nil {
		return nil, err
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("db.connected")

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	arts, err := articles.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	apiHandler, err := api.NewHandler(log, api.Config{MaxBodyBytes: cfg.MaxBodyBytes}, codec, password.New(params), users, arts)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		metrics: NewMetrics(),
		api:     apiHandler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	router := newRouter(a.log, a.cfg, a.pool, a.metrics, a.api)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
