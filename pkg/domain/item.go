package domain

// DisplayItem is a record of the current view together with its position in the
// source data (not in the filtered, sorted or sliced result).
type DisplayItem[T any] struct {
	Index int `json:"index"`
	Value T   `json:"value"`
}

// Summary describes the latest execution: the requested page and the number of
// records matching filter and search before slicing.
type Summary struct {
	Page          int `json:"page" mapstructure:"page"`
	Size          int `json:"size,omitempty" mapstructure:"size"`
	FilteredCount int `json:"filteredCount" mapstructure:"filteredCount"`
}

// Values extracts the records of a display list, in order.
func Values[T any](items []DisplayItem[T]) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.Value
	}
	return out
}
