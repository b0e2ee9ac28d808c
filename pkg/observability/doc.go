/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log lines.

Both are delivered as domain.LifecycleHooks, so they can be merged and handed to the
engine without the engine knowing about either.
*/
package observability
