// Package server provides the HTTP server for the fingerpaint pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/fingerpaint/internal/app"
	"github.com/ayusman/fingerpaint/internal/logger"
	"github.com/ayusman/fingerpaint/internal/metrics"
	"github.com/ayusman/fingerpaint/internal/server/api"
)

// shutdownTimeout bounds how long in-flight requests may take after ctx ends.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Nil collaborators disable their routes.
type Config struct {
	StaticDir string
	Publisher *app.Publisher
	Commands  api.Submitter
	Metrics   *metrics.Manager
	Logger    logger.Logger

	// StreamInterval paces the MJPEG stream; zero means DefaultStreamInterval.
	StreamInterval time.Duration
}

// Server represents the HTTP server for the fingerpaint application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logger.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    config.Logger,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.Named("server")
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Publisher != nil {
		s.mux.Handle("/api/canvas.png", api.NewCanvasHandler(s.config.Publisher))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Publisher, s.config.StreamInterval, s.config.Metrics))
		s.mux.Handle("/api/status", NewStatusHandler(s.config.Publisher, s.config.Metrics, s.log))
	}

	if s.config.Commands != nil {
		s.mux.Handle("/api/control", api.NewControlHandler(s.config.Commands))
	}

	if s.config.Metrics != nil {
		s.mux.Handle("/metrics", s.config.Metrics.Handler())
	}

	// Serve static files if StaticDir is configured
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

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Publisher != nil {
		st := s.config.Publisher.View().Status
		response["frames"] = st.Seq
		response["session"] = st.Session
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info(ctx, "http server stopped")
	return nil
}
