// Package mcp implements the Model Context Protocol server: tool and resource
// registries, JSON-RPC dispatch, and the session-multiplexed HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"uikb/internal/catalog"
	"uikb/internal/errors"
	"uikb/internal/slogutil"
)

// ServerName is reported in the initialize result.
const ServerName = "uikb"

// Server answers decoded MCP requests for a session.
type Server struct {
	logger  *slog.Logger
	version string
	catalog *catalog.Catalog
	tools   map[string]ToolHandler
}

// NewServer creates a new MCP server backed by cat.
func NewServer(version string, cat *catalog.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	server := &Server{
		logger:  logger,
		version: version,
		catalog: cat,
		tools:   make(map[string]ToolHandler),
	}

	server.RegisterTools()

	return server
}

// Catalog returns the backing catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Handle answers one request on sess. It returns nil when nothing is to be
// sent back.
func (s *Server) Handle(ctx context.Context, sess *Session, req Request) *Response {
	sess.Touch()

	switch r := req.(type) {
	case initializeRequest:
		if sess.Initialized() {
			return NewErrorResponse(r.ID, InvalidRequest, "Invalid Request: Server already initialized", nil)
		}
		return NewResultResponse(r.ID, s.handleInitialize(sess, r.Params))

	case pingRequest:
		return NewResultResponse(r.ID, struct{}{})

	case listToolsRequest:
		return NewResultResponse(r.ID, map[string]interface{}{
			"tools": s.GetToolDefinitions(),
		})

	case callToolRequest:
		result, err := s.CallTool(ctx, r.Params.Name, r.Params.Arguments)
		if err != nil {
			return s.errorResponse(r.ID, r.Method, err)
		}
		return NewResultResponse(r.ID, result)

	case listResourcesRequest:
		resources, _ := s.GetResourceDefinitions()
		return NewResultResponse(r.ID, map[string]interface{}{
			"resources": resources,
		})

	case listResourceTemplatesRequest:
		_, templates := s.GetResourceDefinitions()
		return NewResultResponse(r.ID, map[string]interface{}{
			"resourceTemplates": templates,
		})

	case readResourceRequest:
		contents, err := s.ReadResource(ctx, r.Params.URI)
		if err != nil {
			return s.errorResponse(r.ID, r.Method, err)
		}
		return NewResultResponse(r.ID, map[string]interface{}{
			"contents": contents,
		})

	case notification:
		s.handleNotification(sess, r)
		return nil

	case clientResponse:
		s.logger.Debug("Dropping client response", "session", sess.ID, "id", string(r.ID))
		return nil

	case invalidRequest:
		return NewErrorResponse(r.ID, r.err.Code, r.err.Message, nil)

	case unsupportedRequest:
		return s.errorResponse(r.ID, r.Method, &RPCError{
			Code:    MethodNotFound,
			Message: "Method not found: " + r.Method,
		})

	default:
		return s.errorResponse(req.RequestID(), req.RequestMethod(),
			errors.NewInternalError("unhandled request type", nil))
	}
}

func (s *Server) errorResponse(id json.RawMessage, method string, err error) *Response {
	rpcErr := ToRPCError(err)
	level := slog.LevelWarn
	if rpcErr.Code == InternalError {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "Request failed",
		"method", method,
		"code", rpcErr.Code,
		"error", err.Error(),
	)
	return &Response{Jsonrpc: JSONRPCVersion, ID: id, Error: rpcErr}
}

// handleNotification handles a JSON-RPC notification
func (s *Server) handleNotification(sess *Session, n notification) {
	switch n.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized", "session", sess.ID, "state", sess.State().String())
	case "notifications/cancelled":
		s.logger.Debug("Client cancelled request", "session", sess.ID)
	default:
		s.logger.Debug("Unknown notification",
			"session", sess.ID,
			"method", n.Method,
		)
	}
}
