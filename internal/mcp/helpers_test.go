package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"uikb/internal/catalog"
	"uikb/internal/envelope"
)

const buttonSource = `import React from "react";
import { cn } from '../lib/cn';

export interface ButtonProps {
  label: string;
  onClick: () => void;
  disabled?: boolean;
}

export function Button(props: ButtonProps) { return null; }
`

// newTestServer builds a server over a temp project containing files, keyed
// by slash-separated path relative to the project root.
func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for rel, src := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
	}
	cat := catalog.New(catalog.Options{ComponentsDir: root, ProjectRoot: root})
	return NewServer("test", cat, nil)
}

func libraryFiles() map[string]string {
	return map[string]string{
		"src/ui/Button.tsx":         buttonSource,
		"src/layout/Grid.tsx":       "interface GridProps { columns: number }",
		"src/forms/TextInput.tsx":   "interface TextInputProps { value: string; onChange: (v: string) => void }",
		"src/widgets/FormsPanel.ts": "",
	}
}

func mustDecode(t *testing.T, raw string) Request {
	t.Helper()
	return decodeRequest(json.RawMessage(raw))
}

// toolEnvelope unwraps the JSON envelope from a tools/call result.
func toolEnvelope(t *testing.T, result map[string]interface{}) envelope.Response {
	t.Helper()
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok, "content block list")
	require.Len(t, content, 1)
	require.Equal(t, "text", content[0]["type"])

	var env envelope.Response
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &env))
	return env
}

// componentNames decodes get_components data into names.
func componentNames(t *testing.T, env envelope.Response) []string {
	t.Helper()
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)

	var payload struct {
		Components []struct {
			Name string `json:"name"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))

	names := make([]string, 0, len(payload.Components))
	for _, c := range payload.Components {
		names = append(names, c.Name)
	}
	return names
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (map[string]interface{}, error) {
	t.Helper()
	return s.CallTool(context.Background(), name, args)
}
