package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// ErrCorruptStore reports an encodings file that exists but cannot be
// decoded. This is fatal at startup: the process must not silently start
// with an empty registry when a non-empty one was expected.
var ErrCorruptStore = errors.New("encodings file is corrupt")

// Store persists the registry as a single JSON file holding the serialized
// (names, encodings) pair. The whole file is rewritten after every mutation;
// there is no incremental persistence.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// encodingsFile is the on-disk layout, the same shape the service has always
// persisted: two index-aligned arrays.
type encodingsFile struct {
	Names     []string    `json:"names"`
	Encodings [][]float64 `json:"encodings"`
}

// Load reads the encodings file into a new registry. A missing file yields
// an empty registry; a file that exists but cannot be decoded, or whose
// sequences disagree in length, yields ErrCorruptStore.
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var f encodingsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", s.path, err, ErrCorruptStore)
	}
	if len(f.Names) != len(f.Encodings) {
		return nil, fmt.Errorf("%s: %d names but %d encodings: %w",
			s.path, len(f.Names), len(f.Encodings), ErrCorruptStore)
	}

	r := New()
	r.replace(f.Names, f.Encodings)
	return r, nil
}

// Save atomically overwrites the encodings file with the full current
// registry. The write-to-temp-then-rename discipline guarantees a concurrent
// reader never sees a partially-written file.
func (s *Store) Save(r *Registry) error {
	names, encodings := r.Snapshot()
	if encodings == nil {
		encodings = [][]float64{}
	}
	if names == nil {
		names = []string{}
	}

	data, err := json.Marshal(encodingsFile{Names: names, Encodings: encodings})
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
