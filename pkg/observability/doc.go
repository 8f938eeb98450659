/*
Package observability watches table events: Collector turns them into
Prometheus metrics and LogEvents writes them to a structured logger.

Both attach to any event bus, so they work the same for local and remote
execution.
*/
package observability
