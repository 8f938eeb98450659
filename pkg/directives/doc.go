/*
Package directives provides the small behaviors UI bindings are built from.

Each directive is constructed from a table and exposes a restricted set of event
subscriptions plus one or two operations translating a user intent (toggle a
column, type in a search box, go to the next page) into table operations.
Directives hold no table state of their own, only scalars derived from events.
*/
package directives
