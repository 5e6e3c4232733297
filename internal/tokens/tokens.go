// Package tokens serves the design-token payload shipped with uikb.
package tokens

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tokens.yaml
var tokensYAML []byte

// Tokens is the design-token tree: colours, spacing, typography and border
// radii. Leaves are CSS values; colour scales nest one level deeper.
type Tokens struct {
	Colors       map[string]interface{} `yaml:"colors" json:"colors"`
	Spacing      map[string]string      `yaml:"spacing" json:"spacing"`
	Typography   Typography             `yaml:"typography" json:"typography"`
	BorderRadius map[string]string      `yaml:"borderRadius" json:"borderRadius"`
}

// Typography groups the font tokens.
type Typography struct {
	FontFamily map[string]string `yaml:"fontFamily" json:"fontFamily"`
	FontSize   map[string]string `yaml:"fontSize" json:"fontSize"`
	FontWeight map[string]string `yaml:"fontWeight" json:"fontWeight"`
}

var (
	loadOnce sync.Once
	loaded   *Tokens
	loadErr  error
)

// Load decodes the embedded payload. The result is decoded once and shared;
// callers must not modify it.
func Load() (*Tokens, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(tokensYAML)
	})
	return loaded, loadErr
}

// Parse decodes a token document.
func Parse(data []byte) (*Tokens, error) {
	var t Tokens
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode design tokens: %w", err)
	}
	t.Colors = normalizeKeys(t.Colors)
	return &t, nil
}

// normalizeKeys turns yaml's map[string]interface{} children (which may carry
// integer keys such as 500) into string-keyed maps that encode as JSON.
func normalizeKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return normalizeKeys(val)
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalizeValue(child)
		}
		return out
	default:
		return val
	}
}
