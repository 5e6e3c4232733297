package component

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"uikb/internal/slogutil"
)

// DefaultExtensions are the recognised component source extensions.
var DefaultExtensions = []string{".ts", ".tsx"}

// ScanOptions configures a Scanner.
type ScanOptions struct {
	// Extensions lists accepted file suffixes. Empty means DefaultExtensions.
	Extensions []string
	// IgnoreDirs names directories whose contents are never visited.
	IgnoreDirs []string
	Logger     *slog.Logger
}

// Scanner discovers candidate component files under a directory.
type Scanner struct {
	extensions []string
	ignore     map[string]bool
	logger     *slog.Logger
}

// NewScanner creates a scanner.
func NewScanner(opts ScanOptions) *Scanner {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignore[d] = true
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Scanner{
		extensions: exts,
		ignore:     ignore,
		logger:     logger,
	}
}

// Scan walks rootDir and returns the full path of every file with a
// recognised extension, in walk order. A missing or unreadable root yields an
// empty list; unreadable sub-directories are skipped.
func (s *Scanner) Scan(rootDir string) []string {
	files := []string{}

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootDir {
				return err
			}
			s.logger.Warn("Skipping unreadable path",
				"path", path,
				"error", err.Error(),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != rootDir && s.ignore[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if s.accepts(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Component directory not scanned",
			"root", rootDir,
			"error", err.Error(),
		)
		return []string{}
	}

	s.logger.Debug("Scanned component directory",
		"root", rootDir,
		"files", len(files),
	)
	return files
}

func (s *Scanner) accepts(name string) bool {
	for _, ext := range s.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Scan walks rootDir with the default extensions and no ignored directories.
func Scan(rootDir string) []string {
	return NewScanner(ScanOptions{}).Scan(rootDir)
}
