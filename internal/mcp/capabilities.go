package mcp

import "slices"

// LatestProtocolVersion is offered when the client asks for a version the
// server does not speak.
const LatestProtocolVersion = "2025-06-18"

// SupportedProtocolVersions lists the MCP revisions the server accepts.
var SupportedProtocolVersions = []string{LatestProtocolVersion, "2025-03-26", "2024-11-05"}

// ServerCapabilities represents the capabilities exposed by the MCP server
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
}

// ToolsCapability represents the tools capability
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ResourcesCapability represents the resources capability
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// ServerInfo represents information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult represents the result of the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

const serverInstructions = "Use get_components to browse the component library, " +
	"get_component_by_name for a single component's props and usage, " +
	"and get_design_tokens for colors, spacing, typography and radii."

// negotiateVersion echoes the client's version when supported.
func negotiateVersion(requested string) string {
	if slices.Contains(SupportedProtocolVersions, requested) {
		return requested
	}
	return LatestProtocolVersion
}

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(sess *Session, params InitializeParams) *InitializeResult {
	version := negotiateVersion(params.ProtocolVersion)
	sess.initialize(params.ClientInfo, version)

	s.logger.Info("MCP session initializing",
		"session", sess.ID,
		"client", params.ClientInfo.Name,
		"clientVersion", params.ClientInfo.Version,
		"protocolVersion", version,
	)

	return &InitializeResult{
		ProtocolVersion: version,
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{ListChanged: false},
			Resources: &ResourcesCapability{
				Subscribe:   false,
				ListChanged: true,
			},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
		Instructions: serverInstructions,
	}
}
