package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is an inbound message decoded into its tagged variant. Dispatch
// switches on the concrete type.
type Request interface {
	// RequestID returns the JSON-RPC id, or nil for notifications.
	RequestID() json.RawMessage
	// RequestMethod returns the JSON-RPC method.
	RequestMethod() string
}

type baseRequest struct {
	ID     json.RawMessage
	Method string
}

func (b baseRequest) RequestID() json.RawMessage { return b.ID }
func (b baseRequest) RequestMethod() string      { return b.Method }

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams are the params of an initialize request.
type InitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	ClientInfo      ClientInfo             `json:"clientInfo"`
}

// CallToolParams are the params of a tools/call request.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ReadResourceParams are the params of a resources/read request.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

type initializeRequest struct {
	baseRequest
	Params InitializeParams
}

type pingRequest struct{ baseRequest }

type listToolsRequest struct{ baseRequest }

type callToolRequest struct {
	baseRequest
	Params CallToolParams
}

type listResourcesRequest struct{ baseRequest }

type listResourceTemplatesRequest struct{ baseRequest }

type readResourceRequest struct {
	baseRequest
	Params ReadResourceParams
}

// notification carries no id and never gets a response.
type notification struct {
	baseRequest
	Params json.RawMessage
}

type unsupportedRequest struct{ baseRequest }

// clientResponse is a response from the client to a server request. The
// server never issues requests, so these are dropped.
type clientResponse struct{ baseRequest }

// invalidRequest is a message that could not be turned into a usable
// request. It is answered with err.
type invalidRequest struct {
	baseRequest
	err *RPCError
}

// parseBody splits a POST body into individual messages. batch reports
// whether the body was a JSON array.
func parseBody(body []byte) (msgs []json.RawMessage, batch bool, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &msgs); err != nil {
			return nil, true, err
		}
		return msgs, true, nil
	}

	if !json.Valid(trimmed) {
		var v interface{}
		return nil, false, json.Unmarshal(trimmed, &v)
	}
	return []json.RawMessage{trimmed}, false, nil
}

// decodeRequest turns one raw message into its tagged variant.
func decodeRequest(raw json.RawMessage) Request {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return invalidRequest{err: &RPCError{Code: InvalidRequest, Message: "Invalid Request: " + err.Error()}}
	}

	id := msg.ID
	if bytes.Equal(id, []byte("null")) {
		id = nil
	}
	base := baseRequest{ID: id, Method: msg.Method}

	if msg.Jsonrpc != JSONRPCVersion {
		return invalidRequest{baseRequest: base, err: &RPCError{Code: InvalidRequest, Message: "Invalid Request: jsonrpc must be \"2.0\""}}
	}

	if msg.Method == "" {
		if id != nil && (msg.Result != nil || msg.Error != nil) {
			return clientResponse{base}
		}
		return invalidRequest{baseRequest: base, err: &RPCError{Code: InvalidRequest, Message: "Invalid Request: missing method"}}
	}

	if id == nil {
		return notification{baseRequest: base, Params: msg.Params}
	}

	switch msg.Method {
	case "initialize":
		req := initializeRequest{baseRequest: base}
		if err := decodeParams(msg.Params, &req.Params); err != nil {
			return invalidParams(base, err)
		}
		return req
	case "ping":
		return pingRequest{base}
	case "tools/list":
		return listToolsRequest{base}
	case "tools/call":
		req := callToolRequest{baseRequest: base}
		if err := decodeParams(msg.Params, &req.Params); err != nil {
			return invalidParams(base, err)
		}
		if req.Params.Name == "" {
			return invalidParams(base, fmt.Errorf("missing tool name"))
		}
		return req
	case "resources/list":
		return listResourcesRequest{base}
	case "resources/templates/list":
		return listResourceTemplatesRequest{base}
	case "resources/read":
		req := readResourceRequest{baseRequest: base}
		if err := decodeParams(msg.Params, &req.Params); err != nil {
			return invalidParams(base, err)
		}
		if req.Params.URI == "" {
			return invalidParams(base, fmt.Errorf("missing uri"))
		}
		return req
	default:
		return unsupportedRequest{base}
	}
}

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func invalidParams(base baseRequest, err error) invalidRequest {
	return invalidRequest{
		baseRequest: base,
		err:         &RPCError{Code: InvalidParams, Message: "Invalid params: " + err.Error()},
	}
}
