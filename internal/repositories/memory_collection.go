package repositories

import "sync"

// MemoryCollection is an in-memory implementation of Collection, used
// by tests so services can run without touching the filesystem.
type MemoryCollection[T any] struct {
	records []T
	mu      sync.RWMutex
}

// NewMemoryCollection creates an empty MemoryCollection.
func NewMemoryCollection[T any]() *MemoryCollection[T] {
	return &MemoryCollection[T]{records: []T{}}
}

// ReadAll returns a copy of the current records.
func (c *MemoryCollection[T]) ReadAll() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.records))
	copy(out, c.records)
	return out, nil
}

// WriteAll replaces the stored records.
func (c *MemoryCollection[T]) WriteAll(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make([]T, len(records))
	copy(c.records, records)
	return nil
}

// Mutate runs fn under the write lock.
func (c *MemoryCollection[T]) Mutate(fn func(records []T) ([]T, bool, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := make([]T, len(c.records))
	copy(current, c.records)

	updated, persist, err := fn(current)
	if err != nil {
		return err
	}
	if persist {
		c.records = make([]T, len(updated))
		copy(c.records, updated)
	}
	return nil
}
