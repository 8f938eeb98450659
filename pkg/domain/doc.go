/*
Package domain contains the core data model of the smart-table engine.

It defines the declarative table state that drives the pipeline, the criteria
sub-trees (sort, filter, search, slice), the derived values produced by an
execution (Summary, DisplayItem) and the closed set of events the engine
broadcasts. This package is kept pure and free of external dependencies.

# Key Entities

  - TableState: The single source of truth (Sort, Filter, Search, Slice).
  - DisplayItem: A displayed record correlated to its position in the source data.
  - Summary: Page, size and the filtered count of the latest execution.
  - Event: A typed notification identified by an EventKind.
*/
package domain
