// Package corpus enumerates document sources and turns their raw bytes
// into page-addressable text ready for chunking.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is a directory-like enumeration of corpus files.
type Source interface {
	// List returns the identifiers (base names or relative paths) of
	// every available document.
	List(ctx context.Context) ([]string, error)
	// Fetch returns the raw bytes of one document.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// supportedExt lists the formats Extract knows how to handle.
var supportedExt = map[string]bool{
	".pdf": true,
	".md":  true,
	".txt": true,
}

// Supported reports whether a file name has an extractable extension.
func Supported(name string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(name))]
}

// Dir serves documents from a local directory.
type Dir struct {
	path string
}

// NewDir creates a Source over the given directory.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus dir %s: %w", d.path, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (d *Dir) Fetch(ctx context.Context, name string) ([]byte, error) {
	// Identifiers come from List, but a manifest written by an older
	// deployment could smuggle a path; keep reads inside the corpus dir.
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid corpus file name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", name, err)
	}
	return data, nil
}
