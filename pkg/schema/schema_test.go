package schema_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smart-table/smart-table-server/internal/testutils"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc := map[string]any{
		"sort": map[string]any{"pointer": "name", "direction": "desc"},
		"filter": map[string]any{
			"age": []any{map[string]any{"value": 30, "operator": "gte", "type": "number"}},
		},
		"search": map[string]any{"value": "bo", "scope": []any{"name"}, "flags": "i"},
		"slice":  map[string]any{"page": "2", "size": 10},
	}

	state, err := schema.Decode(doc)

	require.NoError(t, err)
	assert.Equal(t, domain.TableState{
		Sort:   domain.SortState{Pointer: "name", Direction: domain.Desc},
		Filter: domain.FilterState{"age": {{Value: 30, Operator: domain.OpGTE, Type: domain.TypeNumber}}},
		Search: domain.SearchState{Value: "bo", Scope: []string{"name"}, Flags: "i"},
		Slice:  domain.SliceState{Page: 2, Size: 10},
	}, state)
}

func TestDecode_Defaults(t *testing.T) {
	state, err := schema.Decode(nil)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTableState(), state)
}

func TestDecode_SingleClause(t *testing.T) {
	doc := map[string]any{
		"filter": map[string]any{"name": map[string]any{"value": "bo"}},
	}

	state, err := schema.Decode(doc)

	require.NoError(t, err)
	assert.Equal(t, []domain.Clause{{Value: "bo"}}, state.Filter["name"])
}

func TestDecode_ReportsEveryProblem(t *testing.T) {
	doc := map[string]any{
		"sort": map[string]any{"direction": "sideways"},
		"filter": map[string]any{
			"b": []any{map[string]any{"value": 1, "operator": "between"}},
			"a": []any{map[string]any{"value": 1, "type": "money"}},
		},
		"search": map[string]any{"value": "(", "scope": []any{"name"}},
		"slice":  map[string]any{"page": -3},
	}

	_, err := schema.Decode(doc)

	require.Error(t, err)
	var paths []string
	for _, e := range schema.ValidationErrors(err) {
		var verr *schema.ValidationError
		require.ErrorAs(t, e, &verr)
		paths = append(paths, verr.Path)
	}
	assert.Equal(t, []string{
		"sort.direction",
		"filter.a[0].type",
		"filter.b[0].operator",
		"search.value",
		"slice.page",
	}, paths)
	assert.True(t, strings.HasPrefix(err.Error(), "5 validation errors:"))
}

func TestDecode_TypeMismatch(t *testing.T) {
	_, err := schema.Decode(map[string]any{"slice": map[string]any{"page": "first"}})

	assert.ErrorContains(t, err, "failed to decode table state")
	assert.Nil(t, schema.ValidationErrors(err))
}

func TestValidate_SingleError(t *testing.T) {
	state := domain.DefaultTableState()
	state.Search = domain.SearchState{Value: "x", Flags: "q"}

	err := schema.Validate(state)

	require.Len(t, schema.ValidationErrors(err), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidSearch, "the aggregate unwraps to the failures")
	assert.Equal(t, `search.value: invalid search expression: unknown flag 'q'`, err.Error())
}

func TestValidate_UnboundedSize(t *testing.T) {
	state := domain.DefaultTableState()
	state.Slice.Size = domain.Unbounded

	assert.NoError(t, schema.Validate(state))
}

func TestEncode_RoundTrip(t *testing.T) {
	state := domain.TableState{
		Sort:   domain.SortState{Pointer: "name", Direction: domain.Asc},
		Filter: domain.FilterState{"age": {{Value: 3, Operator: domain.OpGT, Type: domain.TypeNumber}}},
		Search: domain.SearchState{Value: "x", Scope: []string{"name"}},
		Slice:  domain.SliceState{Page: 3, Size: 5},
	}

	doc, err := schema.Encode(state)
	require.NoError(t, err)
	assert.Contains(t, doc, "sort")
	assert.Contains(t, doc, "slice")

	back, err := schema.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, state, back)
}

func TestSet(t *testing.T) {
	doc := schema.Set(nil, "sort.pointer", "name")
	doc = schema.Set(doc, "sort.direction", "desc")
	doc = schema.Set(doc, "slice", map[string]any{"page": 2})
	doc = schema.Set(doc, "slice", map[string]any{"size": 5})

	assert.Equal(t, map[string]any{
		"sort":  map[string]any{"pointer": "name", "direction": "desc"},
		"slice": map[string]any{"page": 2, "size": 5},
	}, doc)
}

func TestLoadFile(t *testing.T) {
	path := testutils.WriteFile(t, "state.yaml", `
sort:
  pointer: age
  direction: asc
filter:
  name:
    - value: bo
      operator: includes
      type: string
slice:
  page: 1
  size: 2
`)

	state, err := schema.LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, domain.SortState{Pointer: "age", Direction: domain.Asc}, state.Sort)
	assert.Equal(t, domain.SliceState{Page: 1, Size: 2}, state.Slice)
	assert.Equal(t, []domain.Clause{{Value: "bo", Operator: domain.OpIncludes, Type: domain.TypeString}}, state.Filter["name"])
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := schema.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecords(t *testing.T) {
	records, err := schema.ReadRecords(strings.NewReader(`[{"name": "Bob", "age": 41}, {"name": "Alice", "age": 36.5}]`))

	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"name": "Bob", "age": 41},
		{"name": "Alice", "age": 36.5},
	}, records)

	records, err = schema.ReadRecords(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = schema.ReadRecords(strings.NewReader("name: Bob"))
	assert.Error(t, err)
}
