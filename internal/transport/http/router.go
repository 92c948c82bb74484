// Package httptransport assembles the HTTP surface: global middleware, the
// operational endpoints, and every feature handler.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/platform/metrics"
	"bloodbank/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// FeatureHandler is implemented by every feature package's HTTP handler.
type FeatureHandler interface {
	Register(r chi.Router)
}

// NewRouter builds the router with the standard middleware chain. Feature
// handlers mount their own routes and guard them with RequireAuth/RequireRole.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, handlers ...FeatureHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}
