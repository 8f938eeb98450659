package domain

import "reflect"

// Direction is the ordering requested for the sort pointer.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
	None Direction = "none"
)

// Comparator orders two field values: negative when a sorts first, zero when equal.
type Comparator func(a, b any) int

// SortState addresses the field to sort by and the direction.
// An empty Pointer or a None direction leaves the order untouched.
type SortState struct {
	Pointer    string     `json:"pointer,omitempty" yaml:"pointer,omitempty" mapstructure:"pointer"`
	Direction  Direction  `json:"direction,omitempty" yaml:"direction,omitempty" mapstructure:"direction"`
	Comparator Comparator `json:"-" yaml:"-" mapstructure:"-"`
}

// Merge applies the non-empty fields of patch on top of s.
func (s SortState) Merge(patch SortState) SortState {
	if patch.Pointer != "" {
		s.Pointer = patch.Pointer
	}
	if patch.Direction != "" {
		s.Direction = patch.Direction
	}
	if patch.Comparator != nil {
		s.Comparator = patch.Comparator
	}
	return s
}

// Operator names the predicate a filter clause applies.
type Operator string

const (
	OpIncludes  Operator = "includes"
	OpIs        Operator = "is"
	OpIsNot     Operator = "isNot"
	OpLT        Operator = "lt"
	OpGT        Operator = "gt"
	OpLTE       Operator = "lte"
	OpGTE       Operator = "gte"
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpAnyOf     Operator = "anyOf"
)

// ClauseType selects the coercion applied to both operands before comparison.
// The empty type compares raw values.
type ClauseType string

const (
	TypeBoolean ClauseType = "boolean"
	TypeNumber  ClauseType = "number"
	TypeDate    ClauseType = "date"
	TypeString  ClauseType = "string"
)

// Clause is a single filter predicate on a field.
type Clause struct {
	Value    any        `json:"value" yaml:"value" mapstructure:"value"`
	Operator Operator   `json:"operator,omitempty" yaml:"operator,omitempty" mapstructure:"operator"`
	Type     ClauseType `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
}

// FilterState maps a field path to the clauses that must all hold for that field.
type FilterState map[string][]Clause

// Merge replaces the paths present in patch and leaves every other path untouched.
func (f FilterState) Merge(patch FilterState) FilterState {
	out := f.Clone()
	for path, clauses := range patch {
		out[path] = cloneClauses(clauses)
	}
	return out
}

// Clone copies the mapping clause by clause.
func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	for path, clauses := range f {
		out[path] = cloneClauses(clauses)
	}
	return out
}

func cloneClauses(clauses []Clause) []Clause {
	if clauses == nil {
		return nil
	}
	out := make([]Clause, len(clauses))
	copy(out, clauses)
	for i := range out {
		out[i].Value = cloneValue(out[i].Value)
	}
	return out
}

// cloneValue copies slice values such as an anyOf list one level deep.
func cloneValue(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(cp, rv)
	return cp.Interface()
}

// SearchState describes a free-text search across a set of field paths.
type SearchState struct {
	Value  string   `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Scope  []string `json:"scope,omitempty" yaml:"scope,omitempty" mapstructure:"scope"`
	Flags  string   `json:"flags,omitempty" yaml:"flags,omitempty" mapstructure:"flags"`
	Escape bool     `json:"escape,omitempty" yaml:"escape,omitempty" mapstructure:"escape"`
}

// Merge applies patch on top of s. Value and Escape always override since every
// search request states them; Scope and Flags are kept when the patch omits them.
func (s SearchState) Merge(patch SearchState) SearchState {
	s.Value = patch.Value
	s.Escape = patch.Escape
	if patch.Scope != nil {
		s.Scope = append([]string(nil), patch.Scope...)
	}
	if patch.Flags != "" {
		s.Flags = patch.Flags
	}
	return s
}

func (s SearchState) clone() SearchState {
	if s.Scope != nil {
		s.Scope = append([]string(nil), s.Scope...)
	}
	return s
}

// SliceState selects a 1-based page. A zero Size means the page spans the whole result set.
type SliceState struct {
	Page int `json:"page" yaml:"page" mapstructure:"page"`
	Size int `json:"size,omitempty" yaml:"size,omitempty" mapstructure:"size"`
}

// Merge applies a positive Page and Size from patch; a Size of Unbounded clears the size.
func (s SliceState) Merge(patch SliceState) SliceState {
	if patch.Page > 0 {
		s.Page = patch.Page
	}
	switch {
	case patch.Size > 0:
		s.Size = patch.Size
	case patch.Size == Unbounded:
		s.Size = 0
	}
	return s
}
