// Package policy provides an optional target selection layer that can be
// attached to an orchestration run via context. It is deliberately decoupled
// from the rest of the engine so that using it is entirely opt-in - runs that
// do not embed a Policy in their context execute every enabled target.
package policy
