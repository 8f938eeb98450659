package pipeline

import (
	"slices"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/fn"
	"github.com/smart-table/smart-table-server/pkg/pointer"
)

// DefaultComparator orders equal values as 0, absent (nil) values last and
// everything else by natural order. Values without a natural order sort after.
func DefaultComparator(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	order, ok := compare(a, b)
	if ok && order == 0 {
		return 0
	}
	if ok && order < 0 {
		return -1
	}
	return 1
}

// Sort builds the ordering stage. Without a pointer, or with the none direction,
// it returns a copy in the original order. An empty direction sorts ascending.
// The input slice is never reordered.
func Sort[T any](criteria domain.SortState) (Stage[T], error) {
	if criteria.Pointer == "" || criteria.Direction == domain.None {
		return identity[T], nil
	}

	cmp := criteria.Comparator
	if cmp == nil {
		cmp = DefaultComparator
	}
	if criteria.Direction == domain.Desc {
		cmp = fn.Swap(cmp)
	}

	p := pointer.New(criteria.Pointer)
	byField := func(a, b domain.DisplayItem[T]) int {
		return cmp(p.Get(a.Value), p.Get(b.Value))
	}

	return func(items []domain.DisplayItem[T]) []domain.DisplayItem[T] {
		out := slices.Clone(items)
		slices.SortStableFunc(out, byField)
		return out
	}, nil
}

func identity[T any](items []domain.DisplayItem[T]) []domain.DisplayItem[T] {
	out := make([]domain.DisplayItem[T], len(items))
	copy(out, items)
	return out
}
