package pipeline

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/fn"
	"github.com/smart-table/smart-table-server/pkg/pointer"
)

// Search builds the stage keeping the items where at least one scoped field matches
// the search expression. An empty scope or value makes it a no-op.
//
// The value is read as an ECMAScript regular expression unless Escape is set, in
// which case it matches as literal text.
func Search[T any](criteria domain.SearchState) (Stage[T], error) {
	if len(criteria.Scope) == 0 || criteria.Value == "" {
		return identity[T], nil
	}

	re, err := Compile(criteria)
	if err != nil {
		return nil, err
	}

	matchers := fn.Map(criteria.Scope, func(path string) func(domain.DisplayItem[T]) bool {
		p := pointer.New(path)
		return func(item domain.DisplayItem[T]) bool {
			ok, err := re.MatchString(stringify(p.Get(item.Value)))
			return err == nil && ok
		}
	})
	keep := fn.Some(matchers...)

	return func(items []domain.DisplayItem[T]) []domain.DisplayItem[T] {
		return fn.Filter(items, keep)
	}, nil
}

// Compile turns search criteria into a regular expression.
// Flags follow JavaScript: i, m, s and u are honored; g and y have no effect on a
// single test and are accepted.
func Compile(criteria domain.SearchState) (*regexp2.Regexp, error) {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, flag := range criteria.Flags {
		switch flag {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		case 'g', 'y':
		default:
			return nil, fmt.Errorf("%w: unknown flag %q", domain.ErrInvalidSearch, flag)
		}
	}

	pattern := criteria.Value
	if criteria.Escape {
		pattern = regexp2.Escape(pattern)
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSearch, err)
	}
	return re, nil
}
