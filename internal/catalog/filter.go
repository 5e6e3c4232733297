package catalog

import (
	"slices"
	"strings"

	"uikb/internal/component"
)

// CategoryAll selects every record.
const CategoryAll = "all"

// Categories lists the accepted category values.
var Categories = []string{"ui", "layout", "forms", CategoryAll}

// ValidCategory reports whether category is one of Categories.
func ValidCategory(category string) bool {
	return slices.Contains(Categories, category)
}

// FilterByCategory keeps records whose path has a segment equal to category
// or whose lowercased name contains it. CategoryAll keeps everything.
func FilterByCategory(records []component.Record, category string) []component.Record {
	if category == CategoryAll {
		return records
	}

	out := make([]component.Record, 0, len(records))
	for _, rec := range records {
		if hasSegment(rec.Path, category) || strings.Contains(strings.ToLower(rec.Name), category) {
			out = append(out, rec)
		}
	}
	return out
}

func hasSegment(path, segment string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// FindByName returns the first record whose name equals name ignoring case.
func FindByName(records []component.Record, name string) (component.Record, bool) {
	for _, rec := range records {
		if strings.EqualFold(rec.Name, name) {
			return rec, true
		}
	}
	return component.Record{}, false
}
