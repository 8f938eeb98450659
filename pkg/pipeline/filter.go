package pipeline

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/fn"
	"github.com/smart-table/smart-table-server/pkg/pointer"
)

type predicate = func(any) bool

// operators maps an operator to a builder closing over the clause value.
// Every returned predicate receives the coerced field value.
var operators = map[domain.Operator]func(value any) predicate{
	domain.OpIncludes: func(value any) predicate {
		return func(input any) bool { return includes(input, value) }
	},
	domain.OpIs: func(value any) predicate {
		return func(input any) bool { return sameValue(value, input) }
	},
	domain.OpIsNot: func(value any) predicate {
		return func(input any) bool { return !sameValue(value, input) }
	},
	domain.OpLT: func(value any) predicate {
		return func(input any) bool { return less(input, value) }
	},
	domain.OpGT: func(value any) predicate {
		return func(input any) bool { return greater(input, value) }
	},
	domain.OpLTE: func(value any) predicate {
		return fn.Not(func(input any) bool { return greater(input, value) })
	},
	domain.OpGTE: func(value any) predicate {
		return fn.Not(func(input any) bool { return less(input, value) })
	},
	domain.OpEquals: func(value any) predicate {
		return func(input any) bool { return looseEqual(value, input) }
	},
	domain.OpNotEquals: func(value any) predicate {
		return func(input any) bool { return !looseEqual(value, input) }
	},
	domain.OpAnyOf: func(value any) predicate {
		return func(input any) bool { return includes(value, input) }
	},
}

// Filter builds the stage keeping the items for which every clause of every path holds.
// Clauses with an empty-string value and paths without clauses are ignored.
func Filter[T any](criteria domain.FilterState) (Stage[T], error) {
	var preds []func(domain.DisplayItem[T]) bool
	for path, clauses := range normalize(criteria) {
		p := pointer.New(path)
		for _, clause := range clauses {
			check, err := clausePredicate(clause)
			if err != nil {
				return nil, fmt.Errorf("filter on %q: %w", path, err)
			}
			preds = append(preds, func(item domain.DisplayItem[T]) bool {
				return check(p.Get(item.Value))
			})
		}
	}

	if len(preds) == 0 {
		return identity[T], nil
	}
	keep := fn.Every(preds...)
	return func(items []domain.DisplayItem[T]) []domain.DisplayItem[T] {
		return fn.Filter(items, keep)
	}, nil
}

func normalize(criteria domain.FilterState) domain.FilterState {
	out := domain.FilterState{}
	for path, clauses := range criteria {
		kept := fn.Filter(clauses, func(c domain.Clause) bool {
			s, isString := c.Value.(string)
			return !isString || s != ""
		})
		if len(kept) > 0 {
			out[path] = kept
		}
	}
	return out
}

func clausePredicate(clause domain.Clause) (predicate, error) {
	op := clause.Operator
	if op == "" {
		op = domain.OpIncludes
	}
	build, ok := operators[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperator, op)
	}
	coerce := Coercion(clause.Type)
	test := build(coerceOperand(coerce, clause.Value))
	return func(field any) bool {
		return test(coerce(field))
	}, nil
}

// coerceOperand applies the coercion to the clause value, element-wise for lists.
func coerceOperand(coerce func(any) any, value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return coerce(value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = coerce(rv.Index(i).Interface())
	}
	return out
}

// Coercion returns the conversion applied to both operands of a clause of the given type.
// String coercion lowercases, which makes string clauses case-insensitive.
// The empty or an unknown type leaves values untouched.
func Coercion(t domain.ClauseType) func(any) any {
	switch t {
	case domain.TypeString:
		return func(v any) any { return strings.ToLower(stringify(v)) }
	case domain.TypeNumber:
		return func(v any) any { return toNumber(v) }
	case domain.TypeBoolean:
		return func(v any) any { return truthy(v) }
	case domain.TypeDate:
		return func(v any) any { return toDate(v) }
	}
	return func(v any) any { return v }
}

func includes(container, value any) bool {
	switch c := container.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(c, stringify(value))
	}
	rv := reflect.ValueOf(container)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if sameValue(rv.Index(i).Interface(), value) {
			return true
		}
	}
	return false
}

func toNumber(v any) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	switch n := v.(type) {
	case bool:
		return boolFloat(n)
	case string:
		return parseNumber(n)
	case time.Time:
		return float64(n.UnixMilli())
	}
	return math.NaN()
}

func truthy(v any) bool {
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	return true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// toDate converts to a time. Values that are not dates become NaN, which orders against nothing.
func toDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return math.NaN()
	}
	if f, ok := toFloat(v); ok && !math.IsNaN(f) {
		return time.UnixMilli(int64(f)).UTC()
	}
	return math.NaN()
}

// HasOperator reports whether the filter stage knows op. The empty operator
// stands for includes.
func HasOperator(op domain.Operator) bool {
	if op == "" {
		return true
	}
	_, ok := operators[op]
	return ok
}
