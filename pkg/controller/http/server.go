package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
	"github.com/andystumpf/CalendarToSlack/pkg/utils/logging"
)

type Server struct {
	router         *chi.Mux
	webhookHandler *WebhookHandler
	secrets        interfaces.SecretSource
}

type Options func(*Server)

// WithWebhook registers the event webhook behind signature verification
func WithWebhook(handler *WebhookHandler, secrets interfaces.SecretSource) Options {
	return func(s *Server) {
		s.webhookHandler = handler
		s.secrets = secrets
	}
}

func New(opts ...Options) *Server {
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

	// Webhook endpoint - no session auth, authenticity is the request
	// signature itself
	if s.webhookHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SignatureMiddleware(s.secrets))
			r.Post("/event", s.webhookHandler.ServeHTTP)
		})
	}

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
