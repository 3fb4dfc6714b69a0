package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/fuzzor/internal/yml"
	"gopkg.in/yaml.v3"
)

func parseNode(t *testing.T, data string) *yml.Node {
	t.Helper()
	var node yaml.Node
	err := yaml.Unmarshal([]byte(data), &node)
	assert.NoError(t, err)
	return yml.Root(&node)
}

func TestParseTarget(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      *Target
		expectError string
	}{
		{
			description: "defaults applied",
			input: `
name: libxml2-api
project: libxml2
fuzz_target: api
`,
			expect: &Target{
				Name:          "libxml2-api",
				Project:       "libxml2",
				FuzzTarget:    "api",
				Enabled:       true,
				Sanitizer:     "address",
				MaxRunSeconds: 900,
			},
		},
		{
			description: "full entry",
			input: `
name: zlib-compress
project: zlib
fuzz_target: compress_fuzzer
enabled: false
sanitizer: memory
dictionary: dict/zlib.dict
environment:
  FUZZ_SEED: "42"
max_run_seconds: 120
`,
			expect: &Target{
				Name:          "zlib-compress",
				Project:       "zlib",
				FuzzTarget:    "compress_fuzzer",
				Enabled:       false,
				Sanitizer:     "memory",
				Dictionary:    "dict/zlib.dict",
				Environment:   map[string]string{"FUZZ_SEED": "42"},
				MaxRunSeconds: 120,
			},
		},
		{
			description: "binaries hint supplies run seconds and args",
			input: `
name: sqlite3-ossfuzz
project: sqlite3
fuzz_target: ossfuzz
binaries:
  - max_run_seconds: 300
    args:
      - -rss_limit_mb=2048
      - -timeout=25
`,
			expect: &Target{
				Name:          "sqlite3-ossfuzz",
				Project:       "sqlite3",
				FuzzTarget:    "ossfuzz",
				Enabled:       true,
				Sanitizer:     "address",
				FuzzerArgs:    []string{"-rss_limit_mb=2048", "-timeout=25"},
				MaxRunSeconds: 300,
			},
		},
		{
			description: "explicit max_run_seconds overrides binaries hint",
			input: `
name: sqlite3-ossfuzz
project: sqlite3
fuzz_target: ossfuzz
max_run_seconds: 60
binaries:
  - max_run_seconds: 300
`,
			expect: &Target{
				Name:          "sqlite3-ossfuzz",
				Project:       "sqlite3",
				FuzzTarget:    "ossfuzz",
				Enabled:       true,
				Sanitizer:     "address",
				MaxRunSeconds: 60,
			},
		},
		{
			description: "zero binaries hint is preserved for validation",
			input: `
name: sqlite3-ossfuzz
project: sqlite3
fuzz_target: ossfuzz
binaries:
  - max_run_seconds: 0
`,
			expect: &Target{
				Name:          "sqlite3-ossfuzz",
				Project:       "sqlite3",
				FuzzTarget:    "ossfuzz",
				Enabled:       true,
				Sanitizer:     "address",
				MaxRunSeconds: 0,
			},
		},
		{
			description: "all missing required fields reported together",
			input: `
enabled: true
`,
			expectError: "missing required fields: name, project, fuzz_target",
		},
		{
			description: "partially missing required fields",
			input: `
name: broken
fuzz_target: fz
`,
			expectError: "missing required fields: project",
		},
		{
			description: "enabled must be boolean",
			input: `
name: broken
project: p
fuzz_target: fz
enabled: "yes please"
`,
			expectError: "enabled should be a boolean",
		},
	}

	for _, testCase := range testCases {
		target, err := ParseTarget(parseNode(t, testCase.input))
		if testCase.expectError != "" {
			if assert.Error(t, err, testCase.description) {
				assert.Contains(t, err.Error(), testCase.expectError, testCase.description)
			}
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestTarget_Validate(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	target := &Target{Name: "t", Project: "p", FuzzTarget: "fz", MaxRunSeconds: 0}
	assert.Error(t, target.Validate(ctx, fs, nil))

	target.MaxRunSeconds = -5
	assert.Error(t, target.Validate(ctx, fs, nil))

	target.MaxRunSeconds = 60
	assert.NoError(t, target.Validate(ctx, fs, nil))

	// missing dictionary clears the field, it is not an error
	target.Dictionary = filepath.Join(t.TempDir(), "no-such.dict")
	assert.NoError(t, target.Validate(ctx, fs, nil))
	assert.Empty(t, target.Dictionary)

	// existing dictionary is preserved
	dict := filepath.Join(t.TempDir(), "words.dict")
	assert.NoError(t, os.WriteFile(dict, []byte("kw1=\"magic\"\n"), 0o644))
	target.Dictionary = dict
	assert.NoError(t, target.Validate(ctx, fs, nil))
	assert.Equal(t, dict, target.Dictionary)
}

func TestTarget_BuildKey(t *testing.T) {
	a := &Target{Name: "a", Project: "p1", Sanitizer: "address"}
	b := &Target{Name: "b", Project: "p1", Sanitizer: "address"}
	c := &Target{Name: "c", Project: "p1", Sanitizer: "memory"}

	assert.Equal(t, a.BuildKey(), b.BuildKey())
	assert.NotEqual(t, a.BuildKey(), c.BuildKey())
	assert.Equal(t, "p1/address", a.BuildKey().String())
}

func TestTarget_Environ(t *testing.T) {
	target := &Target{Environment: map[string]string{"A": "1"}}
	env := target.Environ()
	env["A"] = "2"
	assert.Equal(t, "1", target.Environment["A"])

	empty := &Target{}
	assert.Nil(t, empty.Environ())
}
