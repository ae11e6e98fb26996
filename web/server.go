// ABOUTME: Pulse site HTTP server: chi router, middleware stack, and shared response helpers.
// ABOUTME: Serves CMS pages, form submissions, submission details, and the JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2389-research/pulse/config"
	"github.com/2389-research/pulse/content"
	"github.com/2389-research/pulse/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// Store is the subset of the content store the server reads and writes.
type Store interface {
	GetPage(ctx context.Context, slug string) (*content.Page, error)
	ListPages(ctx context.Context) ([]*content.Page, error)
	GetForm(ctx context.Context, slug string) (*content.Form, error)
	CreateSubmission(ctx context.Context, sub *content.Submission) error
	GetSubmission(ctx context.Context, id string) (*content.Submission, error)
}

// Server is the pulse site server.
type Server struct {
	store      Store
	site       *config.Site
	cache      *render.Cache
	templates  *TemplateEngine
	router     chi.Router
	addr       string
	authToken  string
	origins    []string
	limiter    *ipLimiter
	trustProxy bool
	sanitizer  *bluemonday.Policy
	log        logrus.FieldLogger
}

// ServerConfig holds the configuration for the site server.
type ServerConfig struct {
	Addr        string        // listen address (default: config.DefaultBind)
	Store       Store         // content store (required)
	Site        *config.Site  // site settings (default: config.DefaultSite)
	Cache       *render.Cache // render cache (default: config.DefaultCacheTTL)
	AuthToken   string        // bearer token for /api; empty disables auth
	CORSOrigins []string      // allowed /api origins; empty disables CORS headers
	SubmitRate  int           // form submissions per minute per client
	TrustProxy  bool          // take client IPs from forwarding headers
	Logger      logrus.FieldLogger
}

// NewServer creates a new Server with the given configuration and sets up routing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("store must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultBind
	}
	if cfg.Site == nil {
		cfg.Site = config.DefaultSite()
	}
	if cfg.Cache == nil {
		cfg.Cache = render.NewCache(nil, config.DefaultCacheTTL)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	tmpl, err := NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("initializing templates: %w", err)
	}

	s := &Server{
		store:      cfg.Store,
		site:       cfg.Site,
		cache:      cfg.Cache,
		templates:  tmpl,
		addr:       cfg.Addr,
		authToken:  cfg.AuthToken,
		origins:    cfg.CORSOrigins,
		limiter:    newIPLimiter(cfg.SubmitRate),
		trustProxy: cfg.TrustProxy,
		sanitizer:  bluemonday.UGCPolicy(),
		log:        cfg.Logger,
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an http.Server for the configured address with timeouts
// that keep slow clients from holding connections open.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Forwarding headers are client-controlled unless a proxy overwrites them,
	// and the rate limiter keys on RemoteAddr.
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", http.FileServer(http.FS(StaticFS)))

	r.Route("/api", s.apiRouter)

	r.Post("/forms/{slug}", s.handleFormSubmit)
	r.Get("/submissions/{id}", s.handleSubmission)

	r.Get("/", s.handleHome)
	r.Get("/{slug}", s.handlePage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	})
	return r
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// wantsJSON returns true if the request prefers JSON over HTML based on
// the Accept header. Defaults to JSON when no Accept header is set.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	if strings.Contains(accept, "text/html") {
		return false
	}
	return strings.Contains(accept, "application/json") || strings.Contains(accept, "*/*")
}

// isMaxBytesError reports whether err (or any error in its chain) is an
// *http.MaxBytesError, indicating the request body exceeded the size limit.
func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound
	case isMaxBytesError(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes a short plain-text error for its status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	entry := s.log.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	http.Error(w, http.StatusText(status), status)
}
