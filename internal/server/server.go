// Package server provides the HTTP server for the scribbly viewer and API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/scribbly/internal/metrics"
	"github.com/ayusman/scribbly/internal/server/api"
	"github.com/ayusman/scribbly/internal/store"
)

// DefaultInterval is the publish period of the stream and state feed (~15 FPS).
const DefaultInterval = 66 * time.Millisecond

// FrameSource provides the latest composed frame as JPEG bytes and a
// sequence number that increases with every new frame.
type FrameSource interface {
	Latest() ([]byte, uint64)
}

// Config holds the server configuration. Routes whose dependency is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Canvas    api.Canvas
	Frames    FrameSource
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// Interval is the stream and state feed period. Zero means DefaultInterval.
	Interval time.Duration
}

// Server represents the HTTP server for scribbly.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	state  *StateHandler

	mu  sync.Mutex
	srv *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		settings := api.NewSettingsHandler(s.config.Store)
		s.mux.Handle("/api/settings", settings)
		s.mux.Handle("/api/settings/", settings)
	}

	if s.config.Canvas != nil {
		strokes := api.NewStrokeHandler(s.config.Canvas)
		s.mux.Handle("/api/strokes", strokes)
		s.mux.Handle("/api/strokes/", strokes)

		s.state = NewStateHandler(s.config.Canvas, s.config.Metrics, s.config.Interval)
		s.mux.Handle("/api/state", s.state)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames, s.config.Interval))
	}

	if s.config.Gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Frames != nil {
		_, seq := s.config.Frames.Latest()
		response["frames"] = seq
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address. It returns
// nil after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the state feed and gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.state != nil {
		s.state.Close()
	}
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
