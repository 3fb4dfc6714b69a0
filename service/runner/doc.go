// Package runner spawns helper command invocations, streaming the combined
// stdout/stderr line stream to an append-only per-target log file and to an
// optional live listener, and converting non-zero exits into typed errors.
package runner
