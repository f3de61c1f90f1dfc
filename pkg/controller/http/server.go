package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/usecase"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

const defaultMaxUploadBytes = 32 << 20

// UseCase is the subset of the use case layer served over HTTP
type UseCase interface {
	IngestFiles(ctx context.Context, files []usecase.FileInput) ([]*usecase.FileResult, error)
	Run(ctx context.Context, entries []*model.LogEntry) *usecase.Report
	ReadLogs(ctx context.Context, force bool) ([]*model.LogEntry, error)
	ListFixspecs(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error)
	GetFixspec(ctx context.Context, issueID string) (*model.Fixspec, error)
	ScoreExternalReport(ctx context.Context, report *model.ExternalReport) (*model.ScoredReport, error)
}

type Server struct {
	router         *chi.Mux
	uc             UseCase
	maxUploadBytes int64
}

type Options func(*Server)

// WithMaxUploadBytes limits the request body of uploads
func WithMaxUploadBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/uploads", s.uploadHandler)
		r.Get("/logs", s.logsHandler)
		r.Route("/fixspecs", func(r chi.Router) {
			r.Get("/", s.listFixspecsHandler)
			r.Get("/{issueID}", s.getFixspecHandler)
		})
		r.Post("/reports/score", s.scoreReportHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
