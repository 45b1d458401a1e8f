package web

import (
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tryon-studio/internal/form"
)

//go:embed assets/*
var assetsFS embed.FS

type Options struct {
	Store  *form.Store
	Logger *slog.Logger
	// MaxUploadBytes caps a single image selection.
	MaxUploadBytes int64
	// ResultBaseURL resolves relative result locators for display.
	ResultBaseURL string
}

type Server struct {
	store         *form.Store
	logger        *slog.Logger
	maxUpload     int64
	resultBaseURL string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	store := opts.Store
	if store == nil {
		store = form.NewStore(form.StoreOptions{Logger: logger})
	}

	return &Server{
		store:         store,
		logger:        logger,
		maxUpload:     maxUpload,
		resultBaseURL: strings.TrimRight(opts.ResultBaseURL, "/"),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(s.logger),
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/preview/{slot}", s.handlePreview)

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))

	r.Route("/api", func(r chi.Router) {
		r.Post("/garment", s.handleSelect(form.FieldGarment))
		r.Post("/photo", s.handleSelect(form.FieldPhoto))
		r.Post("/description", s.handleDescription)
		r.Post("/submit", s.handleSubmit)
		r.Get("/state", s.handleState)
		r.Get("/stream", s.handleStream)
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
