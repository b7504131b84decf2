package repositories

// Collection is the storage handle for a single homogeneous array of
// records. Implementations persist the array as a whole: every mutation
// reads the full collection, modifies it in memory, and writes it back.
type Collection[T any] interface {
	ReadAll() ([]T, error)
	WriteAll(records []T) error
	// Mutate runs fn over the current records while holding the
	// collection's write lock, so concurrent mutations cannot lose
	// updates. fn returns the records to persist and whether to persist
	// them at all.
	Mutate(fn func(records []T) ([]T, bool, error)) error
}

// NextID returns the identifier for a new record: 1 for an empty
// collection, otherwise one past the maximum id currently present.
// Because it scans current records rather than keeping a counter, the
// id of a deleted maximum-id record becomes reusable.
func NextID[T any](records []T, id func(T) int) int {
	maxID := 0
	for _, r := range records {
		if id(r) > maxID {
			maxID = id(r)
		}
	}
	return maxID + 1
}
