package runner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	t.Setenv("FUZZOR_ENV_PROBE", "probe-value")
	env := System()
	assert.Equal(t, "probe-value", env["FUZZOR_ENV_PROBE"])
	assert.Equal(t, os.Getenv("PATH"), env["PATH"])
}

func TestEnviron_Merge(t *testing.T) {
	base := Environ{"A": "1", "B": "2"}
	merged := base.Merge(map[string]string{"B": "override", "C": "3"})

	assert.Equal(t, Environ{"A": "1", "B": "override", "C": "3"}, merged)
	// base is copied, never mutated
	assert.Equal(t, Environ{"A": "1", "B": "2"}, base)
}

func TestEnviron_Slice(t *testing.T) {
	env := Environ{"KEY": "value"}
	assert.Equal(t, []string{"KEY=value"}, env.Slice())
}
