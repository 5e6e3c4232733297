package envelope

import "time"

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// FromSource records provenance and derives the confidence tier from it.
// Built-in defaults are speculative, scanned records are heuristic.
func (b *Builder) FromSource(source, root string) *Builder {
	m := b.meta()
	m.Provenance = &Provenance{Source: source, Root: root}

	switch source {
	case "defaults":
		m.Confidence = &Confidence{
			Tier:    TierSpeculative,
			Reasons: []string{"no-components-found", "built-in-defaults"},
		}
		b.WarningWithCode("DEFAULT_RECORDS", "No components were discovered; serving built-in example records")
	case "static":
		m.Confidence = &Confidence{Tier: TierHigh}
	default:
		m.Confidence = &Confidence{
			Tier:    TierLow,
			Reasons: []string{"pattern-extraction"},
		}
	}
	return b
}

// WithCache adds catalog cache status. A zero loadedAt leaves Age empty.
func (b *Builder) WithCache(hit bool, loadedAt time.Time, count int) *Builder {
	info := &CacheInfo{Hit: hit, Count: count}
	if hit && !loadedAt.IsZero() {
		info.Age = time.Since(loadedAt).Truncate(time.Millisecond).String()
	}
	b.meta().Cache = info
	return b
}

// Suggest adds a follow-up tool call.
func (b *Builder) Suggest(tool string, params map[string]interface{}, reason string) *Builder {
	b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: reason,
	})
	return b
}

// WarningWithCode adds a warning with a code.
func (b *Builder) WarningWithCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Build returns the completed response envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

// Static creates an envelope for payloads that never touch the catalog.
func Static(data interface{}) *Response {
	return New().Data(data).FromSource("static", "").Build()
}
