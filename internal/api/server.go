// Package api hosts the HTTP server: the MCP endpoint plus health, readiness
// and index routes, wrapped in the shared middleware chain.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"uikb/internal/config"
	"uikb/internal/mcp"
	"uikb/internal/slogutil"
)

// Server represents the HTTP API server
type Server struct {
	router    *http.ServeMux
	server    *http.Server
	addr      string
	endpoint  string
	logger    *slog.Logger
	mcp       *mcp.Server
	sessions  *mcp.SessionStore
	transport *mcp.HTTPHandler
	startedAt time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, mcpServer *mcp.Server, sessions *mcp.SessionStore, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	s := &Server{
		addr:      cfg.Addr(),
		endpoint:  cfg.Server.Endpoint,
		logger:    logger,
		mcp:       mcpServer,
		sessions:  sessions,
		router:    http.NewServeMux(),
		startedAt: time.Now(),
	}
	s.transport = mcp.NewHTTPHandler(mcpServer, sessions, mcp.HTTPOptions{
		AllowedHosts: cfg.AllowedHosts(),
		Logger:       logger,
	})

	// Register routes
	s.registerRoutes()

	// Create HTTP server with configured router and middleware
	handler, err := s.applyMiddleware(s.router)
	if err != nil {
		return nil, err
	}

	readTimeout := time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       2 * readTimeout,
	}

	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server",
		"addr", ln.Addr().String(),
		"endpoint", s.endpoint,
	)

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown closes every session, which ends open event streams, then
// gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", "sessions", s.sessions.Len())

	s.sessions.CloseAll()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) (http.Handler, error) {
	gzip, err := CompressionMiddleware()
	if err != nil {
		return nil, err
	}

	// Apply middleware in reverse order (last one wraps first)
	handler = gzip(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler, nil
}
