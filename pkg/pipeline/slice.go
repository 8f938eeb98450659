package pipeline

import "github.com/smart-table/smart-table-server/pkg/domain"

// Slice builds the pagination stage. A size of zero or less spans the whole input,
// so every page but the first is empty. Pages below 1 are read as the first page.
func Slice[T any](criteria domain.SliceState) Stage[T] {
	return func(items []domain.DisplayItem[T]) []domain.DisplayItem[T] {
		size := criteria.Size
		if size <= 0 {
			size = len(items)
		}
		page := max(criteria.Page, 1)

		// Past the end; also keeps (page-1)*size from overflowing.
		if size == 0 || page-1 > len(items)/size {
			return identity(items[len(items):])
		}
		start := min((page-1)*size, len(items))
		end := min(start+size, len(items))
		return identity(items[start:end])
	}
}
