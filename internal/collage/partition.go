package collage

import "fmt"

// Partition splits items into consecutive pages of at most capacity elements.
// Order is preserved across and within pages; only the last page may be short.
// The returned pages share the backing array of items.
func Partition[T any](items []T, capacity int) ([][]T, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: page capacity must be positive, got %d", ErrInvalidConfiguration, capacity)
	}

	pages := make([][]T, 0, PageCount(len(items), capacity))
	for start := 0; start < len(items); start += capacity {
		end := min(start+capacity, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages, nil
}
