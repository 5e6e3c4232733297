package mcp

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"uikb/internal/catalog"
	"uikb/internal/errors"
	"uikb/internal/slogutil"
	"uikb/internal/streaming"
)

// SessionHeader carries the session id on every request after initialize.
const SessionHeader = "Mcp-Session-Id"

const (
	defaultMaxBodyBytes = 4 << 20

	badSessionMessage  = "Bad Request: No valid session ID provided"
	invalidSessionText = "Invalid or missing session ID"
)

// HTTPOptions configures an HTTPHandler.
type HTTPOptions struct {
	// AllowedHosts is the Host header allow-list checked before a session is
	// created. Empty disables the check.
	AllowedHosts []string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// HTTPHandler serves the MCP Streamable HTTP transport on a single endpoint:
// POST carries client messages, GET opens the session's event stream and
// DELETE ends the session.
type HTTPHandler struct {
	server       *Server
	store        *SessionStore
	allowedHosts map[string]bool
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHTTPHandler creates the transport. Sessions live in store. Once the
// server's catalog finishes loading, every live session is sent a
// resources/list_changed notification.
func NewHTTPHandler(server *Server, store *SessionStore, opts HTTPOptions) *HTTPHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	var allowed map[string]bool
	if len(opts.AllowedHosts) > 0 {
		allowed = make(map[string]bool, len(opts.AllowedHosts))
		for _, h := range opts.AllowedHosts {
			allowed[strings.ToLower(h)] = true
		}
	}

	h := &HTTPHandler{
		server:       server,
		store:        store,
		allowedHosts: allowed,
		maxBodyBytes: maxBody,
		logger:       logger,
	}

	if cat := server.Catalog(); cat != nil {
		cat.OnLoad(func(stats catalog.Stats) {
			n := store.Broadcast(NewNotification(MethodResourcesListChanged, nil))
			logger.Debug("Announced catalog load", "sessions", n, "count", stats.Count)
		})
	}

	return h
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeTransportError(w, errors.NewInvalidRequestError("Invalid Request: body too large", err))
			return
		}
		writeRPCError(w, http.StatusBadRequest, ParseError, "Parse error: "+err.Error())
		return
	}

	raws, batch, err := parseBody(body)
	if err != nil {
		writeRPCError(w, http.StatusBadRequest, ParseError, "Parse error: "+err.Error())
		return
	}
	if batch && len(raws) == 0 {
		writeTransportError(w, errors.NewInvalidRequestError("Invalid Request: empty batch", nil))
		return
	}

	reqs := make([]Request, len(raws))
	for i, raw := range raws {
		reqs[i] = decodeRequest(raw)
	}

	sessionID := r.Header.Get(SessionHeader)
	sess, ok := h.store.Get(sessionID)

	if sessionID == "" && !batch {
		if _, isInit := reqs[0].(initializeRequest); isInit {
			h.initialize(w, r, reqs[0])
			return
		}
	}

	if !ok {
		h.logger.Debug("Rejecting request without a live session",
			"session", sessionID,
			"retired", h.store.Retired(sessionID),
		)
		writeTransportError(w, errors.NewSessionError(badSessionMessage))
		return
	}

	responses := make([]*Response, 0, len(reqs))
	for _, req := range reqs {
		if resp := h.server.Handle(r.Context(), sess, req); resp != nil {
			responses = append(responses, resp)
		}
	}

	switch {
	case len(responses) == 0:
		w.WriteHeader(http.StatusAccepted)
	case batch:
		writeJSON(w, http.StatusOK, responses)
	default:
		writeJSON(w, http.StatusOK, responses[0])
	}
}

func (h *HTTPHandler) initialize(w http.ResponseWriter, r *http.Request, req Request) {
	if !h.hostAllowed(r.Host) {
		h.logger.Warn("Rejected initialize from disallowed host", "host", r.Host)
		writeTransportError(w, errors.NewHostError(r.Host))
		return
	}

	sess := h.store.Create()
	resp := h.server.Handle(r.Context(), sess, req)

	w.Header().Set(SessionHeader, sess.ID)
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.store.Get(r.Header.Get(SessionHeader))
	if !ok {
		writeText(w, http.StatusBadRequest, invalidSessionText)
		return
	}
	sess.Touch()

	err := streaming.Serve(r.Context(), w, sess.Stream())
	switch {
	case err == nil:
	case stderrors.Is(err, streaming.ErrAttached):
		writeText(w, http.StatusConflict, "Conflict: Only one SSE stream is allowed per session")
	case stderrors.Is(err, streaming.ErrClosed):
		writeText(w, http.StatusBadRequest, invalidSessionText)
	default:
		h.logger.Debug("Event stream ended", "session", sess.ID, "error", err.Error())
	}
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(r.Header.Get(SessionHeader)) {
		writeText(w, http.StatusBadRequest, invalidSessionText)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPHandler) hostAllowed(host string) bool {
	if h.allowedHosts == nil {
		return true
	}
	return h.allowedHosts[strings.ToLower(host)]
}

// writeRPCError writes a JSON-RPC error with a null id.
func writeRPCError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, NewErrorResponse(nil, code, message, nil))
}

// writeTransportError answers a request rejected before dispatch. The body
// carries only the code and message.
func writeTransportError(w http.ResponseWriter, err *errors.UIKBError) {
	rpcErr := ToRPCError(err)
	writeRPCError(w, transportStatus(err.Code), rpcErr.Code, rpcErr.Message)
}

// transportStatus maps error codes to HTTP status codes
func transportStatus(code errors.ErrorCode) int {
	switch code {
	case errors.HostRejected:
		return http.StatusForbidden // 403
	case errors.SessionInvalid, errors.InvalidRequest:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
