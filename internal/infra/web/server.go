package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/domain/ports/usecase"
)

// IngestRunner is what the control API needs from the ingestion use case.
type IngestRunner interface {
	RunCycle(ctx context.Context) (*model.IngestReport, error)
	UnhealthyTargets(threshold int) []string
}

// Server is the operator control surface: queue lifecycle, audit trail,
// profile management and manual ingestion. It never drives the browser itself.
type Server struct {
	queue    usecase.QueueController
	audit    repository.AuditReader
	sink     repository.AuditSink
	profiles repository.ProfileRepository
	ingest   IngestRunner
	auth     *AuthManager
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(
	queue usecase.QueueController,
	audit repository.AuditReader,
	sink repository.AuditSink,
	profiles repository.ProfileRepository,
	ingest IngestRunner,
	auth *AuthManager,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		queue:    queue,
		audit:    audit,
		sink:     sink,
		profiles: profiles,
		ingest:   ingest,
		auth:     auth,
		apiKey:   apiKey,
		log:      &l,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/api/v1/auth/session", s.sessionHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/api/v1/queue", func(r chi.Router) {
			r.Get("/status", s.queueStatusHandler)
			r.Post("/process", s.queueProcessHandler)
			r.Post("/pause", s.queuePauseHandler)
			r.Post("/resume", s.queueResumeHandler)
			r.Post("/stop", s.queueStopHandler)
		})

		r.Route("/api/v1/audit", func(r chi.Router) {
			r.Get("/recent", s.auditRecentHandler)
			r.Get("/jobs/{jobID}", s.auditByJobHandler)
		})

		r.Route("/api/v1/profile", func(r chi.Router) {
			r.Get("/", s.profileGetHandler)
			r.Put("/", s.profilePutHandler)
		})

		r.Route("/api/v1/ingest", func(r chi.Router) {
			r.Post("/run", s.ingestRunHandler)
			r.Get("/unhealthy", s.ingestUnhealthyHandler)
		})
	})

	return r
}

// authMiddleware requires a valid operator session on every control route.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.auth.cfg.HMACSecret) == 0 {
			s.log.Error().Msg("operator JWT secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
