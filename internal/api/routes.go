package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)

	// Endpoint index
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// MCP Streamable HTTP transport
	s.router.Handle(s.endpoint, s.transport)
}
