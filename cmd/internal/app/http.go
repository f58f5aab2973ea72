package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"conduit/cmd/internal/api"
)

// newRouter assembles the full HTTP surface: operational endpoints plus the
// public API.
func newRouter(log Logger, cfg Config, pool *pgxpool.Pool, metrics *Metrics, apiHandler *api.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return WithRequestLogging(next, log)
	})
	r.Use(metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.ReadinessRequireDB {
			if pool == nil {
				http.Error(w, "db not configured", http.StatusServiceUnavailable)
				return
			}
			if err := PingDB(req.Context(), pool, 2*time.Second); err != nil {
				log.Info("readyz.db.not_ready", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	apiHandler.Register(r)

	return r
}
