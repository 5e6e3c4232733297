package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ValidationFailed indicates tool arguments did not match the input schema
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ComponentNotFound indicates no cached record matches the requested name
	ComponentNotFound ErrorCode = "COMPONENT_NOT_FOUND"
	// ResourceNotFound indicates a resource URI that no handler serves
	ResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	// ToolNotFound indicates a tools/call for an unregistered tool
	ToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// SessionInvalid indicates a missing, unknown or closed session id
	SessionInvalid ErrorCode = "SESSION_INVALID"
	// HostRejected indicates the Host header is not in the allow-list
	HostRejected ErrorCode = "HOST_REJECTED"
	// InvalidRequest indicates a malformed protocol message
	InvalidRequest ErrorCode = "INVALID_REQUEST"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// SendRequest suggests sending a protocol request
	SendRequest FixActionType = "send-request"
	// OpenDocs suggests reading the tool or resource listing
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Method      string        `json:"method,omitempty"`
	Description string        `json:"description,omitempty"`
}

// UIKBError represents an error with code, message, and suggestions
type UIKBError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewUIKBError creates a new UIKBError
func NewUIKBError(code ErrorCode, message string, cause error) *UIKBError {
	return &UIKBError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// NewValidationError reports an argument that failed schema validation.
func NewValidationError(field, reason string) *UIKBError {
	return NewUIKBError(ValidationFailed, fmt.Sprintf("invalid argument %q: %s", field, reason), nil).
		WithDetails(map[string]string{"field": field, "reason": reason})
}

// NewNotFoundError reports a component that is not in the catalog.
func NewNotFoundError(name string) *UIKBError {
	return NewUIKBError(ComponentNotFound, fmt.Sprintf("Component %q not found", name), nil).
		WithDetails(map[string]string{"name": name})
}

// NewResourceNotFoundError reports a resource URI or tool with no handler.
func NewResourceNotFoundError(kind, id string) *UIKBError {
	code := ResourceNotFound
	if kind == "tool" {
		code = ToolNotFound
	}
	return NewUIKBError(code, fmt.Sprintf("%s not found: %s", kind, id), nil)
}

// NewSessionError reports a request that carries no usable session.
func NewSessionError(message string) *UIKBError {
	return NewUIKBError(SessionInvalid, message, nil)
}

// NewHostError reports a Host header outside the allow-list.
func NewHostError(host string) *UIKBError {
	return NewUIKBError(HostRejected, "Forbidden: invalid Host header", nil).
		WithDetails(map[string]string{"host": host})
}

// NewInvalidRequestError reports a malformed protocol message.
func NewInvalidRequestError(message string, cause error) *UIKBError {
	return NewUIKBError(InvalidRequest, message, cause)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *UIKBError {
	return NewUIKBError(InternalError, message, cause)
}

// Error implements the error interface
func (e *UIKBError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *UIKBError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *UIKBError) WithDetails(details interface{}) *UIKBError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ValidationFailed: {
		{
			Type:        OpenDocs,
			Method:      "tools/list",
			Description: "List tools to see each input schema",
		},
	},
	ComponentNotFound: {
		{
			Type:        SendRequest,
			Method:      "tools/call get_components",
			Description: "List available components with category \"all\"",
		},
	},
	ResourceNotFound: {
		{
			Type:        OpenDocs,
			Method:      "resources/templates/list",
			Description: "List resource templates to see supported URIs",
		},
	},
	SessionInvalid: {
		{
			Type:        SendRequest,
			Method:      "initialize",
			Description: "Send an initialize request without Mcp-Session-Id to open a new session",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
