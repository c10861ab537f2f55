package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crrankyy/research-agent/pkg/usecase"
	"github.com/crrankyy/research-agent/pkg/utils/logging"
)

type Server struct {
	router      *chi.Mux
	defaultUser string
}

type Options func(*Server)

// WithDefaultUser sets the identity used for requests without an
// X-User-ID header. Empty means such requests are rejected.
func WithDefaultUser(userID string) Options {
	return func(s *Server) {
		s.defaultUser = userID
	}
}

func New(ucs *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/research", func(r chi.Router) {
		r.Use(identityMiddleware(s.defaultUser))

		r.Post("/", startRunHandler(ucs.Research))
		r.Get("/", listRunsHandler(ucs.Research))

		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/", getRunHandler(ucs.Research))
			r.Get("/logs", listLogsHandler(ucs.Research))
			r.Post("/chat", askFollowUpHandler(ucs.FollowUp))
			r.Get("/chat", followUpHistoryHandler(ucs.FollowUp))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // header already committed
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
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
