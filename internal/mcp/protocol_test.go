package mcp

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uikb/internal/errors"
)

func TestErrorResponse_NullID(t *testing.T) {
	resp := NewErrorResponse(nil, ServerError, "Bad Request: No valid session ID provided", nil)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t,
		`{"jsonrpc":"2.0","error":{"code":-32000,"message":"Bad Request: No valid session ID provided"},"id":null}`,
		string(data))
}

func TestResultResponse_KeepsID(t *testing.T) {
	data, err := json.Marshal(NewResultResponse(json.RawMessage(`"abc"`), struct{}{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":{},"id":"abc"}`, string(data))
}

func TestNotification_Shape(t *testing.T) {
	data, err := json.Marshal(NewNotification(MethodResourcesListChanged, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/resources/list_changed"}`, string(data))
}

func TestToRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errors.NewValidationError("name", "required"), InvalidParams},
		{"component", errors.NewNotFoundError("Card"), ResourceNotFound},
		{"resource", errors.NewResourceNotFoundError("resource", "x://y"), ResourceNotFound},
		{"tool", errors.NewResourceNotFoundError("tool", "nope"), InvalidParams},
		{"session", errors.NewSessionError("gone"), ServerError},
		{"host", errors.NewHostError("evil.example"), ServerError},
		{"invalid", errors.NewInvalidRequestError("bad", nil), InvalidRequest},
		{"internal", errors.NewInternalError("boom", nil), InternalError},
		{"wrapped", fmt.Errorf("outer: %w", errors.NewNotFoundError("Card")), ResourceNotFound},
		{"plain", fmt.Errorf("plain"), InternalError},
		{"rpc", &RPCError{Code: MethodNotFound, Message: "x"}, MethodNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRPCError(tt.err).Code)
		})
	}
}

func TestToRPCError_KeepsMessageAndDetails(t *testing.T) {
	rpcErr := ToRPCError(errors.NewNotFoundError("Card"))

	assert.Equal(t, `Component "Card" not found`, rpcErr.Message)
	data := rpcErr.Data.(map[string]interface{})
	assert.Equal(t, map[string]string{"name": "Card"}, data["details"])
}
