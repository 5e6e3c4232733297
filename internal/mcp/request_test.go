package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest_Variants(t *testing.T) {
	tests := []struct {
		raw  string
		want interface{}
	}{
		{`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26"}}`, initializeRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"ping"}`, pingRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, listToolsRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_components"}}`, callToolRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, listResourcesRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"resources/templates/list"}`, listResourceTemplatesRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"components://all"}}`, readResourceRequest{}},
		{`{"jsonrpc":"2.0","method":"notifications/initialized"}`, notification{}},
		{`{"jsonrpc":"2.0","id":null,"method":"notifications/initialized"}`, notification{}},
		{`{"jsonrpc":"2.0","id":1,"method":"prompts/list"}`, unsupportedRequest{}},
		{`{"jsonrpc":"2.0","id":1,"result":{}}`, clientResponse{}},
		{`{"jsonrpc":"1.0","id":1,"method":"ping"}`, invalidRequest{}},
		{`{"jsonrpc":"2.0","id":1}`, invalidRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`, invalidRequest{}},
		{`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":"x"}`, invalidRequest{}},
		{`42`, invalidRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := decodeRequest(json.RawMessage(tt.raw))
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestDecodeRequest_Params(t *testing.T) {
	req := mustDecode(t, `{"jsonrpc":"2.0","id":"a","method":"tools/call","params":{"name":"get_component_by_name","arguments":{"name":"Button"}}}`)

	call, ok := req.(callToolRequest)
	require.True(t, ok)
	assert.Equal(t, json.RawMessage(`"a"`), call.RequestID())
	assert.Equal(t, "tools/call", call.RequestMethod())
	assert.Equal(t, "get_component_by_name", call.Params.Name)
	assert.Equal(t, "Button", call.Params.Arguments["name"])
}

func TestDecodeRequest_InvalidParamsCode(t *testing.T) {
	req := mustDecode(t, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{}}`)

	inv, ok := req.(invalidRequest)
	require.True(t, ok)
	assert.Equal(t, InvalidParams, inv.err.Code)
	assert.Equal(t, json.RawMessage(`1`), inv.RequestID())
}

func TestParseBody(t *testing.T) {
	msgs, batch, err := parseBody([]byte(` {"jsonrpc":"2.0","id":1,"method":"ping"} `))
	require.NoError(t, err)
	assert.False(t, batch)
	assert.Len(t, msgs, 1)

	msgs, batch, err = parseBody([]byte(`[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","method":"notifications/initialized"}]`))
	require.NoError(t, err)
	assert.True(t, batch)
	assert.Len(t, msgs, 2)

	for _, bad := range []string{``, `{`, `[{"a":1}`, `not json`} {
		_, _, err := parseBody([]byte(bad))
		assert.Error(t, err, bad)
	}
}
