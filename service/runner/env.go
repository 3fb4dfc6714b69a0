package runner

import (
	"fmt"
	"os"
	"strings"
)

// Environ is a layered set of process environment variables. Values are
// copied on merge, never mutated in place, so an Environ can be shared by
// concurrent workers.
type Environ map[string]string

// System snapshots the environment inherited by the orchestrator process.
func System() Environ {
	entries := os.Environ()
	result := make(Environ, len(entries))
	for _, entry := range entries {
		if index := strings.Index(entry, "="); index != -1 {
			result[entry[:index]] = entry[index+1:]
		}
	}
	return result
}

// Merge returns a new Environ holding the receiver's variables overridden by
// the supplied ones. The receiver is left untouched.
func (e Environ) Merge(overrides map[string]string) Environ {
	result := make(Environ, len(e)+len(overrides))
	for k, v := range e {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}

// Slice renders the environment in the KEY=VALUE form expected by exec.
func (e Environ) Slice() []string {
	result := make([]string, 0, len(e))
	for k, v := range e {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}
