package domain

// TableState is the declarative description driving the pipeline.
// It is owned by the engine: consumers only ever see detached copies (see Clone).
type TableState struct {
	Sort   SortState   `json:"sort" yaml:"sort" mapstructure:"sort"`
	Filter FilterState `json:"filter" yaml:"filter" mapstructure:"filter"`
	Search SearchState `json:"search" yaml:"search" mapstructure:"search"`
	Slice  SliceState  `json:"slice" yaml:"slice" mapstructure:"slice"`
}

// DefaultTableState returns an empty state anchored on the first page.
func DefaultTableState() TableState {
	return TableState{
		Filter: FilterState{},
		Slice:  SliceState{Page: 1},
	}
}

// Clone returns a structurally independent copy of the state.
// Sort, search and slice are copied by value; every filter clause list is copied
// clause by clause so that the copy cannot be used to mutate the original.
func (s TableState) Clone() TableState {
	out := TableState{
		Sort:   s.Sort,
		Search: s.Search.clone(),
		Slice:  s.Slice,
		Filter: s.Filter.Clone(),
	}
	return out
}

// Unsliced returns a copy of the state covering the whole result set on a single page.
func (s TableState) Unsliced() TableState {
	out := s.Clone()
	out.Slice = SliceState{Page: 1}
	return out
}
