package fuzzor

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Config is a serialisable representation of the orchestrator configuration.
// It can be populated from CLI flags, environment variables, etc. The
// zero-value is not useful on its own - use DefaultConfig as the base.
type Config struct {
	// ConfigURL locates the fuzz target document.
	ConfigURL string `json:"config" yaml:"config"`

	// ArtifactsURL is the root of the per-target artifact tree.
	ArtifactsURL string `json:"artifacts" yaml:"artifacts"`

	// OSSFuzzURL is the OSS-Fuzz checkout holding infra/helper.py.
	OSSFuzzURL string `json:"ossFuzz" yaml:"ossFuzz"`

	// MaxParallel bounds the number of fuzzers running at the same time.
	MaxParallel int `json:"maxParallel" yaml:"maxParallel"`

	// Interpreter runs the helper script (default python3).
	Interpreter string `json:"interpreter" yaml:"interpreter"`
}

// DefaultConfig returns a Config populated with the container workspace
// defaults. Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		ConfigURL:    "/workspace/config/fuzz_targets.yaml",
		ArtifactsURL: "/workspace/artifacts",
		OSSFuzzURL:   "/workspace/oss-fuzz",
		MaxParallel:  defaultParallelism(),
		Interpreter:  "python3",
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if c.ConfigURL == "" {
		return fmt.Errorf("config location is required")
	}
	if c.ArtifactsURL == "" {
		return fmt.Errorf("artifacts location is required")
	}
	if c.OSSFuzzURL == "" {
		return fmt.Errorf("oss-fuzz location is required")
	}
	if c.MaxParallel <= 0 {
		return fmt.Errorf("maxParallel must be > 0")
	}
	return nil
}

// HelperURL returns the location of the OSS-Fuzz helper script.
func (c *Config) HelperURL() string {
	return filepath.Join(c.OSSFuzzURL, "infra", "helper.py")
}

// defaultParallelism derives the run phase worker bound from available
// parallelism; fuzzers are memory hungry so only a quarter of the CPUs is
// used by default.
func defaultParallelism() int {
	if n := runtime.NumCPU() / 4; n > 1 {
		return n
	}
	return 1
}
