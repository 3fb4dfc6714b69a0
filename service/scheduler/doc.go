// Package scheduler runs the run phase: every enabled target's fuzzing
// session executes under a bounded worker pool. Outcomes are collected in
// completion order and the first failure cancels dispatch of work that has
// not started yet; already-running helper processes are allowed to finish.
package scheduler
