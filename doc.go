/*
Package smarttable is a reactive table engine: it keeps the sort, filter, search
and page criteria of a collection of records, recomputes the displayed page when
they change and broadcasts every change as an event.

It is meant to sit behind any interface that shows tabular data: a CLI, an HTTP
endpoint, an MCP tool or a UI binding. The engine owns the state; views only
subscribe to events and call operations.

# Concept

A table holds its records and a TableState made of four parts:

  - Sort: a property pointer ("address.city") and a direction.
  - Filter: clauses per pointer, ANDed together (operators such as includes, gte, anyOf).
  - Search: a regular expression matched against a scope of pointers.
  - Slice: the page number and the page size.

Each operation merges its criteria, broadcasts the change, goes back to the first
page when the result set may change, and executes. An execution reports that it
started, computes the page, broadcasts the summary and the displayed items, then
reports that it ended. Failures are broadcast as events; operations never return
errors.

# Key Features

  - Pipeline: filter, search, sort and slice stages, each replaceable through factories.
  - Directives: small helpers (sort toggles, pagination, working indicator) that
    only see the events they need.
  - Remote execution: WithRemoteExecution hands the state to a query function, so
    the same views work over data that lives on a server.

# Usage

	people := []map[string]any{
		{"name": "Bob", "age": 41},
		{"name": "Alice", "age": 36},
	}

	table := smarttable.New(people)
	table.On(domain.EventDisplayChanged, func(e domain.Event) {
		for _, item := range e.(domain.DisplayChanged[map[string]any]).Items {
			fmt.Println(item.Value["name"])
		}
	})

	<-table.Sort(domain.SortState{Pointer: "name"})
*/
package smarttable
