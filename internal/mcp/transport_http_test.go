package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uikb/internal/streaming"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test-client","version":"0.1"}}}`

const badSessionBody = `{"jsonrpc":"2.0","error":{"code":-32000,"message":"Bad Request: No valid session ID provided"},"id":null}`

type testTransport struct {
	t     *testing.T
	srv   *httptest.Server
	store *SessionStore
	url   string
}

func newTestTransport(t *testing.T, files map[string]string) *testTransport {
	t.Helper()

	srv := httptest.NewUnstartedServer(nil)
	host := srv.Listener.Addr().String()

	store := NewSessionStore(SessionStoreOptions{
		Stream: streaming.Config{HeartbeatPeriod: time.Hour},
	})
	srv.Config.Handler = NewHTTPHandler(newTestServer(t, files), store, HTTPOptions{
		AllowedHosts: []string{host},
	})
	srv.Start()
	t.Cleanup(srv.Close)

	return &testTransport{t: t, srv: srv, store: store, url: srv.URL + "/mcp"}
}

func (tt *testTransport) do(method, sessionID, body string) *http.Response {
	tt.t.Helper()
	req, err := http.NewRequest(method, tt.url, strings.NewReader(body))
	require.NoError(tt.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	resp, err := tt.srv.Client().Do(req)
	require.NoError(tt.t, err)
	return resp
}

func (tt *testTransport) initialize() string {
	tt.t.Helper()
	resp := tt.do(http.MethodPost, "", initializeBody)
	defer resp.Body.Close()
	require.Equal(tt.t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(SessionHeader)
	require.NotEmpty(tt.t, id)
	return id
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(bytes.TrimSpace(data))
}

func decodeResponse(t *testing.T, resp *http.Response) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &msg))
	return msg
}

func TestHTTP_InitializeCallAndFabricatedSession(t *testing.T) {
	tt := newTestTransport(t, libraryFiles())

	resp := tt.do(http.MethodPost, "", initializeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := resp.Header.Get(SessionHeader)
	require.NotEmpty(t, sessionID)

	initMsg := decodeResponse(t, resp)
	require.Nil(t, initMsg.Error)
	var initResult InitializeResult
	require.NoError(t, json.Unmarshal(initMsg.Result, &initResult))
	assert.Equal(t, "2025-03-26", initResult.ProtocolVersion)
	assert.True(t, initResult.Capabilities.Resources.ListChanged)

	resp = tt.do(http.MethodPost, sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp = tt.do(http.MethodPost, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_components","arguments":{"category":"all"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	callMsg := decodeResponse(t, resp)
	require.Nil(t, callMsg.Error)
	assert.Equal(t, json.RawMessage(`2`), callMsg.ID)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(callMsg.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, `"Button"`)

	resp = tt.do(http.MethodPost, "00000000-0000-4000-8000-000000000000", `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, badSessionBody, readBody(t, resp))
}

func TestHTTP_NonInitializeWithoutSession(t *testing.T) {
	tt := newTestTransport(t, nil)

	resp := tt.do(http.MethodPost, "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, badSessionBody, readBody(t, resp))

	assert.Equal(t, 0, tt.store.Len())
}

func TestHTTP_SessionsAreDistinct(t *testing.T) {
	tt := newTestTransport(t, nil)

	a := tt.initialize()
	b := tt.initialize()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, tt.store.Len())
}

func TestHTTP_DeleteEndsSession(t *testing.T) {
	tt := newTestTransport(t, nil)
	sessionID := tt.initialize()

	resp := tt.do(http.MethodDelete, sessionID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = tt.do(http.MethodPost, sessionID, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, badSessionBody, readBody(t, resp))

	resp = tt.do(http.MethodGet, sessionID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or missing session ID", readBody(t, resp))

	resp = tt.do(http.MethodDelete, sessionID, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or missing session ID", readBody(t, resp))
}

func TestHTTP_GetAndDeleteWithoutSession(t *testing.T) {
	tt := newTestTransport(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		for _, id := range []string{"", "unknown"} {
			resp := tt.do(method, id, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, method)
			assert.Equal(t, "Invalid or missing session ID", readBody(t, resp), method)
		}
	}
}

func TestHTTP_HostRejected(t *testing.T) {
	tt := newTestTransport(t, nil)

	req, err := http.NewRequest(http.MethodPost, tt.url, strings.NewReader(initializeBody))
	require.NoError(t, err)
	req.Host = "evil.example:3000"

	resp, err := tt.srv.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(SessionHeader))

	msg := decodeResponse(t, resp)
	require.NotNil(t, msg.Error)
	assert.Equal(t, ServerError, msg.Error.Code)
	assert.Equal(t, "Forbidden: invalid Host header", msg.Error.Message)
	assert.Equal(t, 0, tt.store.Len())
}

func TestHTTP_ParseError(t *testing.T) {
	tt := newTestTransport(t, nil)

	resp := tt.do(http.MethodPost, "", `{"jsonrpc":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	msg := decodeResponse(t, resp)
	require.NotNil(t, msg.Error)
	assert.Equal(t, ParseError, msg.Error.Code)
}

func TestHTTP_Batch(t *testing.T) {
	tt := newTestTransport(t, libraryFiles())
	sessionID := tt.initialize()

	resp := tt.do(http.MethodPost, sessionID, `[
		{"jsonrpc":"2.0","method":"notifications/initialized"},
		{"jsonrpc":"2.0","id":"a","method":"ping"},
		{"jsonrpc":"2.0","id":"b","method":"resources/read","params":{"uri":"components://Missing"}},
		{"jsonrpc":"2.0","id":"c","method":"nope"}
	]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []Message
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &msgs))
	require.Len(t, msgs, 3)

	assert.Equal(t, json.RawMessage(`"a"`), msgs[0].ID)
	assert.Nil(t, msgs[0].Error)

	assert.Equal(t, json.RawMessage(`"b"`), msgs[1].ID)
	assert.Contains(t, string(msgs[1].Result), `Component not found`)

	assert.Equal(t, json.RawMessage(`"c"`), msgs[2].ID)
	require.NotNil(t, msgs[2].Error)
	assert.Equal(t, MethodNotFound, msgs[2].Error.Code)

	resp = tt.do(http.MethodPost, sessionID, `[{"jsonrpc":"2.0","method":"notifications/cancelled"}]`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()
}

func TestHTTP_MethodNotAllowed(t *testing.T) {
	tt := newTestTransport(t, nil)

	resp := tt.do(http.MethodPut, "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST, DELETE", resp.Header.Get("Allow"))
}

func TestHTTP_EventStreamAnnouncesCatalogLoad(t *testing.T) {
	tt := newTestTransport(t, libraryFiles())
	sessionID := tt.initialize()

	req, err := http.NewRequest(http.MethodGet, tt.url, nil)
	require.NoError(t, err)
	req.Header.Set(SessionHeader, sessionID)
	req.Header.Set("Accept", "text/event-stream")

	stream, err := tt.srv.Client().Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Equal(t, http.StatusOK, stream.StatusCode)
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	resp := tt.do(http.MethodPost, sessionID, `{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"components://all"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	lines := make(chan string, 8)
	go func() {
		reader := bufio.NewReader(stream.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	var data string
	timeout := time.After(2 * time.Second)
	for data == "" {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed early")
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		case <-timeout:
			t.Fatal("no list_changed event")
		}
	}
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/resources/list_changed"}`, data)

	second, err := tt.srv.Client().Do(req.Clone(req.Context()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	second.Body.Close()
}
