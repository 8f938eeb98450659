package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	smarttable "github.com/smart-table/smart-table-server"
	httpadapter "github.com/smart-table/smart-table-server/pkg/adapters/http"
	"github.com/smart-table/smart-table-server/pkg/adapters/memory"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	N    int    `json:"n"`
	Name string `json:"name"`
}

func rows() []row {
	return []row{{1, "ant"}, {2, "bee"}, {3, "cat"}, {4, "dog"}, {5, "eel"}}
}

func newServer(t *testing.T, query ports.QueryFunc[row], opts ...httpadapter.Option) *httpadapter.Client {
	t.Helper()
	srv := httptest.NewServer(httpadapter.NewHandler(query, opts...))
	t.Cleanup(srv.Close)
	return httpadapter.NewClient(srv.URL + "/")
}

func TestGetSpec(t *testing.T) {
	doc, err := httpadapter.GetSpec()

	require.NoError(t, err)
	assert.Contains(t, doc.Components.Schemas, "TableState")
	assert.NotNil(t, doc.Paths.Find("/query"))
}

func TestHealthAndInfo(t *testing.T) {
	handler := httpadapter.NewHandler(memory.NewSource(rows()).QueryFunc())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, smarttable.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, httpadapter.RawSpec(), w.Body.Bytes())
}

func TestQuery_RoundTrip(t *testing.T) {
	client := newServer(t, memory.NewSource(rows()).QueryFunc())
	state := domain.DefaultTableState()
	state.Sort = domain.SortState{Pointer: "n", Direction: domain.Desc}
	state.Filter = domain.FilterState{"n": {{Value: 1, Operator: domain.OpGT, Type: domain.TypeNumber}}}
	state.Slice = domain.SliceState{Page: 2, Size: 3}

	result, err := httpadapter.QueryFunc[row](client)(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Page: 2, Size: 3, FilteredCount: 4}, result.Summary)
	assert.Equal(t, []domain.DisplayItem[row]{{Index: 1, Value: row{2, "bee"}}}, result.Data)
}

func TestQuery_RejectsInvalidDocuments(t *testing.T) {
	handler := httpadapter.NewHandler(memory.NewSource(rows()).QueryFunc())

	tests := []struct {
		name   string
		body   string
		expect string
	}{
		{name: "Malformed JSON", body: `{"sort":`, expect: "invalid request body"},
		{name: "Schema Violation", body: `{"sort": {"direction": "up"}}`, expect: "direction"},
		{name: "Not An Object", body: `[1, 2]`, expect: "does not match the schema"},
		{name: "Invalid Search", body: `{"search": {"value": "(", "scope": ["name"]}}`, expect: "search.value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(tt.body))

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.expect)
		})
	}
}

func TestQuery_FailureBecomesError(t *testing.T) {
	client := newServer(t, func(context.Context, domain.TableState) (ports.QueryResult[row], error) {
		return ports.QueryResult[row]{}, errors.New("disk on fire")
	})

	_, err := httpadapter.QueryFunc[row](client)(context.Background(), domain.DefaultTableState())

	assert.ErrorIs(t, err, domain.ErrQueryFailed)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestQuery_EmptyResultEncodesAnArray(t *testing.T) {
	handler := httpadapter.NewHandler(func(context.Context, domain.TableState) (ports.QueryResult[row], error) {
		return ports.QueryResult[row]{Summary: domain.Summary{Page: 1}}, nil
	})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data": [], "summary": {"page": 1, "filteredCount": 0}}`, w.Body.String())
}

func TestRemoteTableOverHTTP(t *testing.T) {
	client := newServer(t, memory.NewSource(rows()).QueryFunc())
	require.NoError(t, client.Health(context.Background()))

	table := smarttable.New[row](nil, smarttable.WithRemoteExecution(httpadapter.QueryFunc[row](client)))
	rec := new(ports.EventRecorder).Record(table)

	ports.Wait(t, table.Search(domain.SearchState{Value: "^[a-c]", Scope: []string{"name"}}))

	assert.Equal(t, 3, table.FilteredCount())
	var display domain.DisplayChanged[row]
	for _, e := range rec.Events() {
		if d, ok := e.(domain.DisplayChanged[row]); ok {
			display = d
		}
	}
	assert.Equal(t, []row{{1, "ant"}, {2, "bee"}, {3, "cat"}}, domain.Values(display.Items))
}

func TestWithMount(t *testing.T) {
	handler := httpadapter.NewHandler(memory.NewSource(rows()).QueryFunc(),
		httpadapter.WithMount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("up 1"))
		})),
	)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, "up 1", w.Body.String())
}
