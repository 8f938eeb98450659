// Package redis caches query results in Redis so that replicas serving the
// same data share computed pages.
package redis
