// Package server wires the HTTP routes and middleware chain.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/app/handler"
	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/middleware"
)

// Init builds the router: the public redirect route at the root, the
// JWT-protected JSON API under /api, plus /ping and /metrics.
func Init(logger *zap.Logger, links service.LinkServiceIface, summary service.SummaryIface, auth service.AuthIface) *chi.Mux {
	get := handler.NewGet(links, logger)
	post := handler.NewPost(links, logger)
	patch := handler.NewPatch(links, logger)
	del := handler.NewDelete(links, logger)
	sum := handler.NewSummary(summary, logger)

	middleware.RegisterMetrics()

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)

	r.Get("/ping", get.PingDB)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.WithJWT(auth))
		api.Use(middleware.WithGZIP)

		api.Route("/shortlinks", func(sl chi.Router) {
			sl.Post("/", post.Create)
			sl.Get("/", get.List)
			sl.Delete("/", del.DeleteBatch)

			sl.Route("/{id}", func(one chi.Router) {
				one.Get("/", get.ByID)
				one.Patch("/", patch.Update)
				one.Delete("/", del.Delete)
				one.Post("/enable", patch.Enable)
				one.Post("/disable", patch.Disable)
			})
		})

		api.Get("/summary", sum.Get)
	})

	// The public redirect route: anything else that looks like a slug.
	r.Get("/{slug}", get.Redirect)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "short link slug is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
