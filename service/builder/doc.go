// Package builder runs the build phase: one helper build invocation per
// unique (project, sanitizer) pair, strictly sequentially. Builds share the
// container workspace and are therefore never parallelized.
package builder
