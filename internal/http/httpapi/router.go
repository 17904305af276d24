package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"genconsole/internal/http/handlers"
	"genconsole/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Cfg.AllowedOrigins),
	)
	if app.Cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/keys", func(r chi.Router) {
		r.Get("/", app.KeysList)
		r.Post("/", app.KeysAdd)
		r.Delete("/", app.KeysRemove)
	})

	r.Route("/v1/batches", func(r chi.Router) {
		r.Post("/", app.BatchesCreate)
		r.Route("/{batch_id}", func(r chi.Router) {
			r.Get("/", app.BatchStatus)
			r.Get("/notices", app.BatchNotices)
			r.Get("/artifacts", app.BatchArtifacts)
			r.Get("/zip", app.BatchZip)
			r.Get("/csv", app.BatchCSV)
		})
	})

	r.Get("/v1/artifacts/{artifact_id}/download", app.ArtifactDownload)
	r.Get("/v1/models", app.Models)
	r.Get("/v1/stats/dashboard", app.StatsDashboard)

	return r
}
