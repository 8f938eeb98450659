/*
Package ports defines the capability interfaces of the smart-table engine.

These interfaces decouple the engine from the strategy that computes its
projections, allowing the same directives to run against the local pipeline or
against a remote data source.

# Key Interfaces

  - Table: The public surface of an engine, consumed by directives and adapters.
  - Executor: Computes exec/eval for an engine (local pipeline or delegated query).
  - ExecContext: The narrow view of the engine an Executor works against.
  - QueryFunc: The remote query contract (table state in, data and summary out).
*/
package ports
