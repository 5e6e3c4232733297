package api

import (
	"net/http"
	"time"

	"uikb/internal/catalog"
	"uikb/internal/mcp"
	"uikb/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Catalog   catalog.Stats    `json:"catalog"`
	Sessions  mcp.SessionStats `json:"sessions"`
}

// IndexResponse lists what the server exposes
type IndexResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoint  string   `json:"endpoint"`
	Transport string   `json:"transport"`
	Tools     []string `json:"tools"`
	Resources []string `json:"resources"`
}

// handleHealth is a liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   version.Version,
		Uptime:    time.Since(s.startedAt).Truncate(time.Second).String(),
	}, http.StatusOK)
}

// handleReady reports the catalog state and session activity. The server is
// ready as soon as it listens; the catalog loads on first use.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.mcp.Catalog().Stats()
	status := "ready"
	if stats.State != catalog.StatePopulated.String() {
		status = "ready-cold"
	}

	WriteJSON(w, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Catalog:   stats,
		Sessions:  s.sessions.Stats(),
	}, http.StatusOK)
}

// handleIndex describes the MCP endpoint
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	resources, templates := s.mcp.GetResourceDefinitions()
	uris := make([]string, 0, len(resources)+len(templates))
	for _, res := range resources {
		uris = append(uris, res.URI)
	}
	for _, tmpl := range templates {
		uris = append(uris, tmpl.URITemplate)
	}

	WriteJSON(w, IndexResponse{
		Name:      mcp.ServerName,
		Version:   version.Version,
		Endpoint:  s.endpoint,
		Transport: "streamable-http",
		Tools:     s.mcp.ToolNames(),
		Resources: uris,
	}, http.StatusOK)
}
