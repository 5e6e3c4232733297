// Package component extracts structural metadata from UI component source
// files. Extraction is pattern based: it recognises the first *Props
// declaration, its member lines and the file's import specifiers, and does not
// attempt to parse the language.
package component

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Prop describes one declared property.
type Prop struct {
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
}

// Props is a property set that remembers declaration order.
type Props struct {
	names  []string
	byName map[string]Prop
}

// Set adds a property. It returns false and leaves the set unchanged when the
// name is already present.
func (p *Props) Set(name string, prop Prop) bool {
	if p.byName == nil {
		p.byName = make(map[string]Prop)
	}
	if _, exists := p.byName[name]; exists {
		return false
	}
	p.names = append(p.names, name)
	p.byName[name] = prop
	return true
}

// Get returns the property with the given name.
func (p Props) Get(name string) (Prop, bool) {
	prop, ok := p.byName[name]
	return prop, ok
}

// Names returns property names in declaration order.
func (p Props) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of properties.
func (p Props) Len() int {
	return len(p.names)
}

// Each calls fn for every property in declaration order.
func (p Props) Each(fn func(name string, prop Prop)) {
	for _, name := range p.names {
		fn(name, p.byName[name])
	}
}

// MarshalJSON encodes the set as a JSON object with keys in declaration order.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (p *Props) UnmarshalJSON(data []byte) error {
	*p = Props{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("props: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("props: expected string key, got %v", tok)
		}
		var prop Prop
		if err := dec.Decode(&prop); err != nil {
			return fmt.Errorf("props: decode %q: %w", name, err)
		}
		p.Set(name, prop)
	}

	_, err = dec.Token()
	return err
}

// Record is the structural metadata extracted from one source file.
type Record struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Props        Props    `json:"props"`
	Usage        string   `json:"usage"`
	Dependencies []string `json:"dependencies"`
}

// fallbackRecord is returned when a file cannot be analysed.
func fallbackRecord(name, relPath string) Record {
	return Record{
		Name:         name,
		Path:         relPath,
		Usage:        Usage(name, Props{}),
		Dependencies: []string{},
	}
}
