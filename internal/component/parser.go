package component

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"uikb/internal/slogutil"
)

var (
	// propsBlockPattern matches the first interface or type alias whose name
	// ends in "Props". The body stops at the first closing brace, so a nested
	// object type truncates the block.
	propsBlockPattern = regexp.MustCompile(`(?:interface|type)\s+[A-Za-z_$][\w$]*Props\b[^{=;]*(?:=\s*)?\{([^}]*)\}`)

	// propLinePattern matches "name: type" or "name?: type".
	propLinePattern = regexp.MustCompile(`^(?:readonly\s+)?([A-Za-z_$][\w$]*)(\?)?\s*:\s*(.+)$`)

	// importPattern matches `import ... from "module"` with either quote style.
	importPattern = regexp.MustCompile(`\bimport\s[^'";]*?\bfrom\s*['"]([^'"\n]+)['"]`)
)

// Parser converts component source files into records. Paths in the
// resulting records are relative to the project root.
type Parser struct {
	projectRoot string
	logger      *slog.Logger
}

// NewParser creates a parser rooted at projectRoot.
func NewParser(projectRoot string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Parser{
		projectRoot: projectRoot,
		logger:      logger,
	}
}

// Parse reads filePath and extracts its record. It never fails: a file that
// cannot be read yields a minimal record with no props or dependencies.
func (p *Parser) Parse(filePath string) Record {
	name := ComponentName(filePath)
	relPath := p.relative(filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		p.logger.Warn("Falling back to minimal component record",
			"path", relPath,
			"error", err.Error(),
		)
		return fallbackRecord(name, relPath)
	}

	return ParseSource(name, relPath, string(content))
}

func (p *Parser) relative(filePath string) string {
	rel, err := relativePath(p.projectRoot, filePath)
	if err != nil {
		return filepath.ToSlash(filePath)
	}
	return rel
}

func relativePath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", target, err)
	}
	return filepath.ToSlash(rel), nil
}

// ComponentName derives a component name from a file's base name.
func ComponentName(filePath string) string {
	base := filepath.Base(filePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return base
	}
	return name
}

// ParseSource extracts a record from already loaded source text.
func ParseSource(name, relPath, src string) Record {
	props := ExtractProps(src)
	return Record{
		Name:         name,
		Path:         relPath,
		Props:        props,
		Usage:        Usage(name, props),
		Dependencies: ExtractImports(src),
	}
}

// ExtractProps returns the members of the first *Props declaration in src.
func ExtractProps(src string) Props {
	var props Props

	m := propsBlockPattern.FindStringSubmatch(src)
	if m == nil {
		return props
	}

	for _, entry := range splitDeclarations(m[1]) {
		lm := propLinePattern.FindStringSubmatch(entry)
		if lm == nil {
			continue
		}
		typ := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(lm[3]), ","))
		props.Set(lm[1], Prop{
			Type:     typ,
			Optional: lm[2] == "?",
		})
	}
	return props
}

// splitDeclarations breaks a props body into member entries on newlines and
// semicolons, dropping blanks and comments.
func splitDeclarations(body string) []string {
	var entries []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed) {
			continue
		}
		for _, part := range strings.Split(trimmed, ";") {
			part = strings.TrimSpace(part)
			if part == "" || isComment(part) {
				continue
			}
			entries = append(entries, part)
		}
	}
	return entries
}

func isComment(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*")
}

// ExtractImports returns every import specifier in order of appearance,
// duplicates included.
func ExtractImports(src string) []string {
	deps := []string{}
	for _, m := range importPattern.FindAllStringSubmatch(src, -1) {
		deps = append(deps, m[1])
	}
	return deps
}
