package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func Routes(h *Handler, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/transcribe/", h.Transcribe)

	r.Route("/job", func(r chi.Router) {
		r.Post("/transcribe/", h.CreateJob)
		r.Get("/{jobID}/status", h.JobStatus)
		r.Get("/{jobID}/result", h.JobResult)
		r.Delete("/{jobID}", h.DeleteJob)
	})

	return r
}
