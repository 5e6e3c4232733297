package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"uikb/internal/catalog"
	"uikb/internal/envelope"
	"uikb/internal/errors"
	"uikb/internal/tokens"
)

// Tool represents a tool exposed via MCP
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolHandler handles a validated tool call and returns an envelope response.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*envelope.Response, error)

// Name length bounds for get_component_by_name.
const (
	minNameLength = 2
	maxNameLength = 100
)

// Guidelines is the fixed usage advice attached to component listings.
type Guidelines struct {
	ImportPattern string   `json:"importPattern"`
	Styling       string   `json:"styling"`
	Conventions   []string `json:"conventions"`
}

// ComponentGuidelines is returned with every get_components result.
var ComponentGuidelines = Guidelines{
	ImportPattern: "import { ComponentName } from '@/components/ComponentName'",
	Styling:       "Style with Tailwind CSS utility classes and accept a className prop for overrides",
	Conventions: []string{
		"Components are function components written in TypeScript",
		"Props are declared in an interface named <Component>Props",
		"Optional props are marked with ? and have sensible defaults",
		"Event handler props are named on<Event>",
		"One component per file, file name matches the component name",
	},
}

// GetToolDefinitions returns all tool definitions
func (s *Server) GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "get_components",
			Description: "List the UI components of the project with their props, example usage and import dependencies, plus usage guidelines",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"enum":        catalog.Categories,
						"default":     catalog.CategoryAll,
						"description": "Restrict to components whose path or name matches the category",
					},
				},
			},
		},
		{
			Name:        "get_component_by_name",
			Description: "Get one component's props, example usage and dependencies by name (case-insensitive)",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"minLength":   minNameLength,
						"maxLength":   maxNameLength,
						"description": "Component name, e.g. Button",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "get_design_tokens",
			Description: "Get the design system tokens: colors, spacing, typography and border radius",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// RegisterTools wires tool names to their handlers.
func (s *Server) RegisterTools() {
	s.tools["get_components"] = s.toolGetComponents
	s.tools["get_component_by_name"] = s.toolGetComponentByName
	s.tools["get_design_tokens"] = s.toolGetDesignTokens
}

// ToolNames returns the registered tool names, sorted.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallTool validates and runs the named tool. The result is the MCP content
// block list with the JSON envelope as text.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (map[string]interface{}, error) {
	handler, ok := s.tools[name]
	if !ok {
		return nil, errors.NewResourceNotFoundError("tool", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	s.logger.Info("Calling tool",
		"tool", name,
		"params", args,
	)

	resp, err := handler(ctx, args)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.NewInternalError("marshal response", err)
	}

	return textContent(string(jsonBytes)), nil
}

func textContent(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	}
}

// stringArg reads an optional string argument.
func stringArg(args map[string]interface{}, field string) (string, bool, error) {
	raw, ok := args[field]
	if !ok || raw == nil {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", true, errors.NewValidationError(field, fmt.Sprintf("expected string, got %T", raw))
	}
	return v, true, nil
}

// componentsResult is the data payload of get_components.
type componentsResult struct {
	Components interface{} `json:"components"`
	Guidelines Guidelines  `json:"guidelines"`
}

func (s *Server) toolGetComponents(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	category, present, err := stringArg(args, "category")
	if err != nil {
		return nil, err
	}
	if !present {
		category = catalog.CategoryAll
	}
	if !catalog.ValidCategory(category) {
		return nil, errors.NewValidationError("category", fmt.Sprintf("must be one of %v", catalog.Categories))
	}

	snap, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, errors.NewInternalError("load catalog", err)
	}
	matches := catalog.FilterByCategory(snap.Records, category)

	b := envelope.New().
		Data(componentsResult{Components: matches, Guidelines: ComponentGuidelines}).
		FromSource(recordSource(snap.Stats), snap.Stats.Root).
		WithCache(snap.Hit, snap.Stats.LoadedAt, snap.Stats.Count)

	if len(matches) == 0 {
		b.WarningWithCode("NO_MATCHES", fmt.Sprintf("No components match category %q", category))
	} else {
		b.Suggest("get_component_by_name", map[string]interface{}{"name": matches[0].Name}, "Inspect a single component")
	}

	return b.Build(), nil
}

func (s *Server) toolGetComponentByName(ctx context.Context, args map[string]interface{}) (*envelope.Response, error) {
	name, present, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, errors.NewValidationError("name", "required")
	}
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, errors.NewValidationError("name", fmt.Sprintf("length must be between %d and %d", minNameLength, maxNameLength))
	}

	snap, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, errors.NewInternalError("load catalog", err)
	}

	rec, ok := catalog.FindByName(snap.Records, name)
	if !ok {
		return nil, errors.NewNotFoundError(name)
	}

	return envelope.New().
		Data(rec).
		FromSource(recordSource(snap.Stats), snap.Stats.Root).
		WithCache(snap.Hit, snap.Stats.LoadedAt, snap.Stats.Count).
		Build(), nil
}

func (s *Server) toolGetDesignTokens(_ context.Context, _ map[string]interface{}) (*envelope.Response, error) {
	t, err := tokens.Load()
	if err != nil {
		return nil, errors.NewInternalError("load design tokens", err)
	}
	return envelope.Static(t), nil
}

func recordSource(stats catalog.Stats) string {
	if stats.UsedDefaults {
		return "defaults"
	}
	return "scan"
}
