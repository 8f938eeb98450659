package smarttable_test

import (
	"context"
	"fmt"

	smarttable "github.com/smart-table/smart-table-server"
	"github.com/smart-table/smart-table-server/pkg/adapters/memory"
	"github.com/smart-table/smart-table-server/pkg/directives"
	"github.com/smart-table/smart-table-server/pkg/domain"
)

type person = map[string]any

var people = []person{
	{"name": "Bob", "age": 41},
	{"name": "Alice", "age": 36},
	{"name": "Carol", "age": 29},
	{"name": "Dave", "age": 52},
}

func printNames(e domain.Event) {
	for _, item := range e.(domain.DisplayChanged[person]).Items {
		fmt.Print(item.Value["name"], " ")
	}
	fmt.Println()
}

// ExampleNew sorts, filters and pages a slice of records.
func ExampleNew() {
	table := smarttable.New(people, smarttable.WithState[person](domain.TableState{
		Slice: domain.SliceState{Page: 1, Size: 2},
	}))
	table.On(domain.EventDisplayChanged, printNames)

	<-table.Sort(domain.SortState{Pointer: "name"})
	<-table.Slice(domain.SliceState{Page: 2})
	<-table.Filter(domain.FilterState{
		"age": {{Value: 40, Operator: domain.OpLT, Type: domain.TypeNumber}},
	})
	fmt.Println(table.FilteredCount(), "of", table.Len())

	// Output:
	// Alice Bob
	// Carol Dave
	// Alice Carol
	// 2 of 4
}

// ExampleWithRemoteExecution delegates projections to a query function, here an
// in-memory source standing in for a server.
func ExampleWithRemoteExecution() {
	source := memory.NewSource(people)
	table := smarttable.New[person](nil, smarttable.WithRemoteExecution(source.QueryFunc()))
	table.On(domain.EventDisplayChanged, printNames)

	pagination := directives.NewPagination(table)
	pagination.OnSummaryChange(func(s domain.Summary) {
		fmt.Printf("page %d, %d matching\n", s.Page, s.FilteredCount)
	})

	<-table.Sort(domain.SortState{Pointer: "age", Direction: domain.Desc})
	<-pagination.ChangePageSize(3)
	fmt.Println("next page:", pagination.IsNextPageEnabled())

	items, _ := table.Eval(context.Background(), &domain.TableState{Slice: domain.SliceState{Page: 1, Size: 1}})
	fmt.Println("first:", items[0].Value["name"])

	// Output:
	// page 1, 4 matching
	// Dave Bob Alice Carol
	// page 1, 4 matching
	// Dave Bob Alice
	// next page: true
	// first: Bob
}
