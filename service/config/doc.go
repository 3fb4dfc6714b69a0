// Package config loads the declarative fuzz target document and turns it
// into a validated set of model.Target values. All per-entry failures are
// accumulated and reported together so that a single load surfaces every
// configuration mistake at once.
package config
