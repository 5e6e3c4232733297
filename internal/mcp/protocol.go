package mcp

import (
	"encoding/json"
	stderrors "errors"

	"uikb/internal/errors"
)

// JSONRPCVersion is the only protocol version accepted on the wire.
const JSONRPCVersion = "2.0"

// Message is the wire shape of an inbound JSON-RPC 2.0 message.
type Message struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Response is an outbound JSON-RPC 2.0 response. A nil ID is written as null.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Notification is an outbound JSON-RPC 2.0 notification.
type Notification struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface
func (e *RPCError) Error() string {
	return e.Message
}

// Standard JSON-RPC error codes plus the MCP server-defined range
const (
	ParseError       = -32700
	InvalidRequest   = -32600
	MethodNotFound   = -32601
	InvalidParams    = -32602
	InternalError    = -32603
	ServerError      = -32000
	ResourceNotFound = -32002
)

// Notification methods sent by the server.
const (
	MethodResourcesListChanged = "notifications/resources/list_changed"
)

// NewErrorResponse creates a new error response message
func NewErrorResponse(id json.RawMessage, code int, message string, data interface{}) *Response {
	return &Response{
		Jsonrpc: JSONRPCVersion,
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// NewResultResponse creates a new result response message
func NewResultResponse(id json.RawMessage, result interface{}) *Response {
	return &Response{
		Jsonrpc: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewNotification creates a new notification message (no id)
func NewNotification(method string, params interface{}) *Notification {
	return &Notification{
		Jsonrpc: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
}

// rpcCodes maps error codes to JSON-RPC codes.
var rpcCodes = map[errors.ErrorCode]int{
	errors.ValidationFailed:  InvalidParams,
	errors.ToolNotFound:      InvalidParams,
	errors.ComponentNotFound: ResourceNotFound,
	errors.ResourceNotFound:  ResourceNotFound,
	errors.SessionInvalid:    ServerError,
	errors.HostRejected:      ServerError,
	errors.InvalidRequest:    InvalidRequest,
	errors.InternalError:     InternalError,
}

// ToRPCError converts err into a JSON-RPC error. Coded errors keep their
// message and carry details and suggested fixes as data; anything else is an
// internal error.
func ToRPCError(err error) *RPCError {
	var rpcErr *RPCError
	if stderrors.As(err, &rpcErr) {
		return rpcErr
	}

	var uErr *errors.UIKBError
	if stderrors.As(err, &uErr) {
		code, ok := rpcCodes[uErr.Code]
		if !ok {
			code = InternalError
		}
		data := map[string]interface{}{"code": uErr.Code}
		if uErr.Details != nil {
			data["details"] = uErr.Details
		}
		if len(uErr.SuggestedFixes) > 0 {
			data["suggestedFixes"] = uErr.SuggestedFixes
		}
		return &RPCError{Code: code, Message: uErr.Message, Data: data}
	}

	return &RPCError{Code: InternalError, Message: err.Error()}
}
