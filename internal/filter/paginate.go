package filter

import "github.com/khrees2412/jobdeck/pkg/models"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// Page is one slice of a list plus the clamped position it was cut at.
type Page[T any] struct {
	Items []T
	Total int
	models.PageState
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Index > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Index < p.TotalPages }

// Paginate cuts items into pages of size and returns page index. TotalPages
// is at least 1 and index is clamped into [1, TotalPages], so a stale index
// past the end lands on the last page instead of an empty one. Items is empty
// only when items is.
func Paginate[T any](items []T, index, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	index = Clamp(index, totalPages)

	start := (index - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	slice := make([]T, 0, end-start)
	if start < end {
		slice = append(slice, items[start:end]...)
	}

	return Page[T]{
		Items: slice,
		Total: total,
		PageState: models.PageState{
			Index:      index,
			Size:       size,
			TotalPages: totalPages,
		},
	}
}

// Clamp forces index into [1, max(1, totalPages)].
func Clamp(index, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if index < 1 {
		return 1
	}
	if index > totalPages {
		return totalPages
	}
	return index
}
