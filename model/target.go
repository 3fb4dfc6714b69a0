package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/fuzzor/internal/yml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSanitizer instruments targets with AddressSanitizer unless the
	// configuration says otherwise.
	DefaultSanitizer = "address"

	// DefaultMaxRunSeconds bounds a single fuzzing session when neither the
	// target nor its first binary supplies a limit.
	DefaultMaxRunSeconds = 900
)

// Target describes one fuzz target's build/run contract. A target is
// constructed once from a parsed configuration entry, validated immediately
// and treated as immutable thereafter.
type Target struct {
	// Name uniquely identifies the target across the enabled set; it also
	// names the per-target artifact directory.
	Name string

	// Project identifies the build unit the target belongs to.
	Project string

	// FuzzTarget is the fuzzer binary/entry point within the project.
	FuzzTarget string

	// Enabled excludes the target from orchestration when false.
	Enabled bool

	// Sanitizer selects the instrumentation mode for build and run.
	Sanitizer string

	// Dictionary is an optional fuzzer dictionary path; cleared with a
	// warning when the file does not exist at validation time.
	Dictionary string

	// Environment holds additional variables merged into the helper process
	// environment for this target only.
	Environment map[string]string

	// FuzzerArgs are appended after a "--" separator on the run command line.
	FuzzerArgs []string

	// MaxRunSeconds bounds the run phase wall time.
	MaxRunSeconds int
}

// ParseTarget converts a YAML mapping node into a Target, applying documented
// defaults. All missing required fields are reported together in a single
// error rather than one at a time.
func ParseTarget(node *yml.Node) (*Target, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("target entry should be a mapping")
	}
	target := &Target{
		Enabled:   true,
		Sanitizer: DefaultSanitizer,
	}
	var binaryRunSeconds int
	var binaryRunSecondsSet bool
	var binaryArgs []string
	var explicitRunSeconds bool

	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			target.Name = valueNode.Text()
		case "project":
			target.Project = valueNode.Text()
		case "fuzz_target":
			target.FuzzTarget = valueNode.Text()
		case "enabled":
			flag, ok := valueNode.Bool()
			if !ok {
				return fmt.Errorf("enabled should be a boolean")
			}
			target.Enabled = flag
		case "sanitizer":
			if value := valueNode.Text(); value != "" {
				target.Sanitizer = value
			}
		case "dictionary":
			target.Dictionary = valueNode.Text()
		case "environment":
			env := valueNode.StringMap()
			if env == nil {
				return fmt.Errorf("environment should be a mapping of string to string")
			}
			target.Environment = env
		case "binaries":
			if valueNode.Kind != yaml.SequenceNode {
				return fmt.Errorf("binaries should be a sequence")
			}
			first := firstElement(valueNode)
			if first == nil {
				return nil
			}
			if seconds, ok := first.Lookup("max_run_seconds").Int(); ok {
				binaryRunSeconds = seconds
				binaryRunSecondsSet = true
			}
			binaryArgs = first.Lookup("args").Strings()
		case "max_run_seconds":
			seconds, ok := valueNode.Int()
			if !ok {
				return fmt.Errorf("max_run_seconds should be an integer")
			}
			target.MaxRunSeconds = seconds
			explicitRunSeconds = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The first binary supplies run defaults the target level does not set.
	// A present hint is taken verbatim so that a bogus zero still reaches
	// validation instead of silently becoming the default.
	target.FuzzerArgs = binaryArgs
	if !explicitRunSeconds {
		if binaryRunSecondsSet {
			target.MaxRunSeconds = binaryRunSeconds
		} else {
			target.MaxRunSeconds = DefaultMaxRunSeconds
		}
	}

	var missing []string
	if target.Name == "" {
		missing = append(missing, "name")
	}
	if target.Project == "" {
		missing = append(missing, "project")
	}
	if target.FuzzTarget == "" {
		missing = append(missing, "fuzz_target")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return target, nil
}

// Validate checks the invariants that cannot be established during parsing.
// A missing dictionary file is downgraded to a warning: the field is cleared
// and the target runs without a dictionary.
func (t *Target) Validate(ctx context.Context, fs afs.Service, logger *zap.SugaredLogger) error {
	if t.MaxRunSeconds <= 0 {
		return fmt.Errorf("max_run_seconds must be greater than zero, got %d", t.MaxRunSeconds)
	}
	if t.Dictionary != "" {
		exists, err := fs.Exists(ctx, t.Dictionary)
		if err != nil {
			return fmt.Errorf("failed to check dictionary %s: %w", t.Dictionary, err)
		}
		if !exists {
			if logger != nil {
				logger.Warnf("target %s: dictionary %s not found, running without a dictionary", t.Name, t.Dictionary)
			}
			t.Dictionary = ""
		}
	}
	return nil
}

// Environ returns a copy of the target specific environment overrides so
// that callers can merge it without mutating the target.
func (t *Target) Environ() map[string]string {
	if len(t.Environment) == 0 {
		return nil
	}
	result := make(map[string]string, len(t.Environment))
	for k, v := range t.Environment {
		result[k] = v
	}
	return result
}

func firstElement(node *yml.Node) *yml.Node {
	var first *yml.Node
	_ = node.Items(func(index int, item *yml.Node) error {
		if index == 0 {
			first = item
		}
		return nil
	})
	return first
}
