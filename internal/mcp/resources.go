package mcp

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"uikb/internal/catalog"
	"uikb/internal/errors"
)

const (
	resourceScheme       = "components://"
	allComponentsURI     = resourceScheme + "all"
	componentURITemplate = resourceScheme + "{name}"
	jsonMimeType         = "application/json"
)

// Resource represents a static resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceTemplate represents a dynamic resource with URI template
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is one entry of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// GetResourceDefinitions returns static resources and resource templates
func (s *Server) GetResourceDefinitions() ([]Resource, []ResourceTemplate) {
	resources := []Resource{
		{
			URI:         allComponentsURI,
			Name:        "All Components",
			Description: "Every component record in the catalog",
			MimeType:    jsonMimeType,
		},
	}

	templates := []ResourceTemplate{
		{
			URITemplate: componentURITemplate,
			Name:        "Component",
			Description: "A single component record, looked up by name ignoring case",
			MimeType:    jsonMimeType,
		},
	}

	return resources, templates
}

// notFoundPayload is returned as content when a templated read names a
// component that does not exist.
type notFoundPayload struct {
	Error string `json:"error"`
	Name  string `json:"name"`
}

// ReadResource reads a resource by URI
func (s *Server) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	s.logger.Debug("Reading resource", "uri", uri)

	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, errors.NewResourceNotFoundError("resource", uri)
	}

	path := strings.TrimPrefix(uri, resourceScheme)
	name, err := url.PathUnescape(path)
	if err != nil || name == "" || strings.Contains(name, "/") {
		return nil, errors.NewResourceNotFoundError("resource", uri)
	}

	records, err := s.catalog.All(ctx)
	if err != nil {
		return nil, errors.NewInternalError("load catalog", err)
	}

	var payload interface{}
	if path == "all" {
		payload = records
	} else if rec, ok := catalog.FindByName(records, name); ok {
		payload = rec
	} else {
		payload = notFoundPayload{Error: "Component not found", Name: name}
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, errors.NewInternalError("marshal resource", err)
	}

	return []ResourceContent{{URI: uri, MimeType: jsonMimeType, Text: string(text)}}, nil
}
