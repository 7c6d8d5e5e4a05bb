// Package server exposes the message renderer over HTTP.
package server

import (
	"net/http"
	"strings"
	"time"

	"partsdesk/access"
	"partsdesk/chat"
	"partsdesk/config"
	"partsdesk/internal"
	"partsdesk/logger"
	"partsdesk/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserRole  = "X-User-Role"
)

// Server wires the HTTP routes to the renderer
type Server struct {
	config   *config.Config
	renderer *chat.Renderer
	access   *access.Table
	log      *logger.ObservabilityLogger
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	version  string
}

// Deps groups the collaborators a Server needs. Nil fields get working defaults.
type Deps struct {
	Renderer *chat.Renderer
	Access   *access.Table
	Logger   *logger.ObservabilityLogger
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Version  string
}

// New creates a server for cfg
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config:   cfg,
		renderer: deps.Renderer,
		access:   deps.Access,
		log:      deps.Logger,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		version:  deps.Version,
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	if s.renderer == nil {
		s.renderer = chat.NewRenderer(nil, chat.Options{
			NoAnswerTrigger: cfg.NoAnswerTrigger,
			NoAnswerMessage: cfg.NoAnswerMessage,
		}, s.log, s.metrics)
	}
	if s.access == nil {
		s.access = access.Default()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s
}

// Routes builds the routed, CORS-wrapped handler
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.withRequestContext, s.observe)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Registered on the root router so a method mismatch answers 405
	router.Handle("/v1/messages/parse", s.requireRole(http.HandlerFunc(s.handleParseMessage))).Methods(http.MethodPost)
	router.Handle("/v1/conversations/render", s.requireRole(http.HandlerFunc(s.handleRenderConversation))).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", headerUserRole, headerRequestID},
		ExposedHeaders: []string{headerRequestID},
	}).Handler(router)
}

// HTTPServer returns an http.Server listening on the configured port
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// withRequestContext tags the request with the caller's X-Request-ID (or a fresh one)
// and the X-User-Role it claims
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = internal.NewRequestID()
		}
		w.Header().Set(headerRequestID, requestID)

		ctx := internal.WithRequestID(r.Context(), requestID)
		ctx = internal.WithUserRole(ctx, strings.TrimSpace(r.Header.Get(headerUserRole)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response code for metrics and logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe counts and logs every routed request by its route template
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RecordHTTP(route, rec.status)
		s.log.Request(internal.GetRequestID(r.Context()), "Handled request", map[string]interface{}{
			"method":      r.Method,
			"route":       route,
			"status":      rec.status,
			"role":        internal.GetUserRole(r.Context()),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// requireRole enforces the chat module capability when role checks are enabled
func (s *Server) requireRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := internal.GetUserRole(r.Context())
		if s.config.RequireRole && !s.access.Allowed(role, access.ModuleChat) {
			s.log.Blocked(internal.GetRequestID(r.Context()), role, access.ModuleChat)
			writeError(w, http.StatusForbidden, "role is not allowed to use chat")
			return
		}
		next.ServeHTTP(w, r)
	})
}
