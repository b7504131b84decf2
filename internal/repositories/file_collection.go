package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileCollection is a Collection backed by a single JSON array file.
// The file and its parent directory are created on first use.
type FileCollection[T any] struct {
	path string
	mu   sync.Mutex
}

// NewFileCollection creates a FileCollection persisting to the given path.
func NewFileCollection[T any](path string) *FileCollection[T] {
	return &FileCollection[T]{path: path}
}

// ensureStore guarantees the parent directory and the file exist,
// initializing an absent file with an empty array. Safe to call before
// every operation.
func (c *FileCollection[T]) ensureStore() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(c.path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", c.path, err)
		}
		if err := os.WriteFile(c.path, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", c.path, err)
		}
	}
	return nil
}

// readAll loads and parses the file without locking. Content that is
// not a valid JSON array is treated as an empty collection rather than
// an error, so a corrupted file never takes the server down.
func (c *FileCollection[T]) readAll() ([]T, error) {
	if err := c.ensureStore(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// writeAll serializes the full array and overwrites the file,
// pretty-printed to keep the data files hand-inspectable.
func (c *FileCollection[T]) writeAll(records []T) error {
	if err := c.ensureStore(); err != nil {
		return err
	}
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.path, err)
	}
	return nil
}

// ReadAll returns the current collection, insertion order preserved.
func (c *FileCollection[T]) ReadAll() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readAll()
}

// WriteAll replaces the collection with the given records.
func (c *FileCollection[T]) WriteAll(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeAll(records)
}

// Mutate runs fn under the collection lock, holding it across the whole
// read-modify-write so two concurrent mutations cannot silently drop
// each other's changes.
func (c *FileCollection[T]) Mutate(fn func(records []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.readAll()
	if err != nil {
		return err
	}
	updated, persist, err := fn(records)
	if err != nil {
		return err
	}
	if !persist {
		return nil
	}
	return c.writeAll(updated)
}
