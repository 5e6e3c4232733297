package component

import "strings"

// ExampleValue picks a JSX attribute value for a property type. The checks are
// substring based and ordered, so "(id: string) => void" yields a string.
func ExampleValue(typ string) string {
	switch {
	case strings.Contains(typ, "string"):
		return `"example"`
	case strings.Contains(typ, "number"):
		return "{42}"
	case strings.Contains(typ, "boolean"):
		return "{true}"
	case strings.Contains(typ, "function"), strings.Contains(typ, "=>"):
		return "{() => {}}"
	case strings.Contains(typ, "[]"):
		return "{[]}"
	default:
		return "{{}}"
	}
}

// Usage renders a self-closing tag that sets every required property.
func Usage(name string, props Props) string {
	var fragments []string
	props.Each(func(prop string, p Prop) {
		if p.Optional {
			return
		}
		fragments = append(fragments, prop+"="+ExampleValue(p.Type))
	})

	if len(fragments) == 0 {
		return "<" + name + " />"
	}
	return "<" + name + " " + strings.Join(fragments, " ") + " />"
}
