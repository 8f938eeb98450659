package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pointer"
)

// Decode turns a document (a tree of maps as produced by JSON, YAML or flags)
// into a table state, then validates it. Scalars are converted loosely: "2" is
// a valid page, "asc" a valid direction.
func Decode(doc map[string]any) (domain.TableState, error) {
	state := domain.DefaultTableState()
	if err := decodeInto(doc, &state); err != nil {
		return domain.TableState{}, err
	}
	if state.Filter == nil {
		state.Filter = domain.FilterState{}
	}
	if state.Slice.Page == 0 {
		state.Slice.Page = 1
	}
	if err := Validate(state); err != nil {
		return domain.TableState{}, err
	}
	return state, nil
}

// Encode turns a table state into a document, the inverse of Decode.
func Encode(state domain.TableState) (map[string]any, error) {
	doc := map[string]any{}
	if err := decodeInto(state, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Set assigns value at the dotted path of doc, creating the intermediate maps.
// Map values are merged into what is already there.
//
//	schema.Set(doc, "slice.size", 20)
//	schema.Set(doc, "sort", map[string]any{"pointer": "name"})
func Set(doc map[string]any, path string, value any) map[string]any {
	if doc == nil {
		doc = map[string]any{}
	}
	if tree, ok := value.(map[string]any); ok {
		return pointer.New(path).Set(doc, tree)
	}
	parent, key := splitLast(path)
	if parent == "" {
		doc[key] = value
		return doc
	}
	return pointer.New(parent).Set(doc, map[string]any{key: value})
}

func splitLast(path string) (string, string) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func decodeInto(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook:       singleClauseHook,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode table state: %w", err)
	}
	return nil
}

var clauseListType = reflect.TypeOf([]domain.Clause(nil))

// singleClauseHook accepts a lone clause where a clause list is expected, so
// `filter: {age: {value: 3, operator: gt}}` reads like its one-element form.
func singleClauseHook(from, to reflect.Type, data any) (any, error) {
	if to == clauseListType && from.Kind() == reflect.Map {
		return []any{data}, nil
	}
	return data, nil
}
