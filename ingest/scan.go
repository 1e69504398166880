package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultScanPatterns match the file types the parser registry handles.
var DefaultScanPatterns = []string{
	"**/*.md",
	"**/*.txt",
	"**/*.pdf",
	"**/*.html",
	"**/*.csv",
	"**/*.docx",
	"**/*.xlsx",
}

// Scan walks root and returns files matching any of the glob patterns,
// relative to root and sorted. Patterns use doublestar syntax, so
// "**/*.pdf" matches at any depth. A nil pattern list uses
// DefaultScanPatterns.
func Scan(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultScanPatterns
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
		}
	}

	seen := make(map[string]bool)
	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		err := doublestar.GlobWalk(fsys, pattern, func(path string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			seen[path] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, filepath.FromSlash(path))
	}
	sort.Strings(files)
	return files, nil
}
