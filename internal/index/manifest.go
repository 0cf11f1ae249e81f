package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Manifest is the single source of truth for "already indexed": a mapping
// from source-file identifier to its human-readable topic label, persisted
// as a JSON document next to the index. Ingestion never re-embeds a file
// present here.
type Manifest struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// OpenManifest loads the manifest at path, or starts an empty one when the
// file does not exist yet.
func OpenManifest(path string) (*Manifest, error) {
	m := &Manifest{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &m.entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Has reports whether the source file is already indexed.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[source]
	return ok
}

// Put records a source file with its topic label. Durable only after
// Persist.
func (m *Manifest) Put(source, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[source] = topic
}

// Len returns the number of indexed source files.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Topic returns the label recorded for a source file.
func (m *Manifest) Topic(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[source]
}

// Sources returns the indexed source-file identifiers, sorted.
func (m *Manifest) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sources := make([]string, 0, len(m.entries))
	for source := range m.entries {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Topics returns the distinct topic labels, sorted.
func (m *Manifest) Topics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(m.entries))
	topics := make([]string, 0, len(m.entries))
	for _, topic := range m.entries {
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Persist writes the manifest atomically: a temp file in the same
// directory followed by a rename, so readers never observe a torn file and
// a crash leaves the previous version intact.
func (m *Manifest) Persist() error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.entries, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish manifest: %w", err)
	}
	return nil
}
