// Package envelope provides the standard wrapper for MCP tool payloads. Every
// tool result carries the data plus metadata about how it was obtained: the
// confidence of the extraction, where the records came from and whether the
// catalog was already warm.
package envelope

// ConfidenceTier represents the quality tier of results.
type ConfidenceTier string

const (
	// TierHigh indicates static data shipped with the server.
	TierHigh ConfidenceTier = "high"
	// TierLow indicates records extracted by pattern matching from source.
	TierLow ConfidenceTier = "low"
	// TierSpeculative indicates built-in placeholder records.
	TierSpeculative ConfidenceTier = "speculative"
)

// Confidence describes result quality.
type Confidence struct {
	Tier    ConfidenceTier `json:"tier"`
	Reasons []string       `json:"reasons,omitempty"`
}

// Provenance describes where the records came from.
type Provenance struct {
	Source string `json:"source"`         // "scan", "defaults" or "static"
	Root   string `json:"root,omitempty"` // scanned directory
}

// CacheInfo describes cache status for this response.
type CacheInfo struct {
	Hit   bool   `json:"hit"`           // true if served from an already loaded catalog
	Age   string `json:"age,omitempty"` // time since the catalog was loaded
	Count int    `json:"count"`         // records held by the catalog
}

// Meta holds response metadata.
type Meta struct {
	Confidence *Confidence `json:"confidence,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
	Cache      *CacheInfo  `json:"cache,omitempty"`
}

// SuggestedCall represents a recommended follow-up tool call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"
