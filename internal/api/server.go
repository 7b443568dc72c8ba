package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"sportrate/tennis-ingestion/internal/api/respond"
)

// SessionHeader carries the operator session token as an alternative to
// the Authorization header
const SessionHeader = "X-Session-Token"

// RouterConfig holds what the router needs beyond the handlers
type RouterConfig struct {
	OperatorToken    string
	CORSAllowOrigins []string
	EnableMetrics    bool
}

// NewRouter creates and configures the chi router with all middleware and routes.
func NewRouter(svc ImportService, db HealthChecker, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" is not allowed on "+r.URL.Path)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})

	h := NewHandler(svc, db)

	// --- Routes ---
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	if cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/tennis", func(r chi.Router) {
		r.With(RequireOperator(cfg.OperatorToken)).Post("/import", h.Import)
	})

	return r
}

// RequireOperator rejects requests without a valid operator session
func RequireOperator(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := sessionToken(r)
			if token == "" || presented == "" ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				hlog.FromRequest(r).Warn().Msg("Rejected unauthenticated operator request")
				respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "an authenticated operator session is required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if scheme, value, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// requestIDLogger tags the request logger with chi's request ID and echoes
// it back to the caller
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	level := zerolog.InfoLevel
	if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
		level = zerolog.DebugLevel
	}
	hlog.FromRequest(r).WithLevel(level).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
