// Package progress provides a lightweight tracker that keeps aggregated
// target counters (total, running, completed, failed, ...) for a single
// orchestration run. The tracker instance lives in the execution context -
// every component that receives the context can atomically update the
// counters via the Delta helper without requiring a global registry.
package progress
