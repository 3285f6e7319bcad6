// Package httpapi exposes the work program editor endpoints over HTTP:
// form metadata, cascading onchange, form submission and row imports.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alexanderramin/workprog/internal/importer"
	"github.com/alexanderramin/workprog/internal/service"
)

const defaultMaxUploadBytes = 32 << 20

// Config for the HTTP handler.
type Config struct {
	WorkPrograms service.WorkProgramService
	Selection    service.SelectionService
	Imports      service.ImportService
	Logger       *slog.Logger

	// ImportSheet picks the sheet of uploaded workbooks.
	ImportSheet    string
	MaxUploadBytes int64

	Now func() time.Time
}

type server struct {
	cfg Config
	log *slog.Logger
}

// New returns the router serving the API.
func New(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &server{cfg: cfg, log: cfg.Logger}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/work_program", func(r chi.Router) {
		r.Get("/form", s.handleFormMetadata)
		r.Post("/submit", s.handleSubmit)
		r.Post("/onchange", s.handleOnChange)
		r.Get("/{id}", s.handleView)
	})
	router.Post("/import/{target}", s.handleImport)
	return router
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.LogAttrs(r.Context(), slog.LevelInfo, "http_request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(started)),
		)
	})
}

func (s *server) loadOptions() importer.LoadOptions {
	return importer.LoadOptions{Sheet: s.cfg.ImportSheet}
}
