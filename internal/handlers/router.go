package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes wires the page, the form actions and the JSON API.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger)

	r.Get("/", h.HandlePage)
	r.Post("/upload", h.HandleUpload)
	r.Post("/prompt", h.HandlePrompt)
	r.Post("/generate", h.HandleGenerate)
	r.Post("/promote", h.HandlePromote)
	r.Get("/result", h.HandleResult)

	r.Route("/api", func(r chi.Router) {
		r.Get("/examples", h.HandleExamples)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.HandleSessions)
			r.Post("/", h.HandleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.HandleSessionDetail)
				r.Delete("/", h.HandleDeleteSession)
				r.Post("/image", h.HandleSessionImage)
				r.Put("/prompt", h.HandleSessionPrompt)
				r.Post("/generate", h.HandleSessionGenerate)
				r.Post("/promote", h.HandleSessionPromote)
			})
		})
	})

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/healthcheck" {
			return
		}
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
