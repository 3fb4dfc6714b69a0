package builder

import (
	"context"
	"path/filepath"

	"github.com/viant/fuzzor/model"
	"github.com/viant/fuzzor/progress"
	"github.com/viant/fuzzor/service/runner"
	"github.com/viant/fuzzor/tracing"
	"go.uber.org/zap"
)

// Service deduplicates and runs fuzzer builds.
type Service struct {
	runner *runner.Service
	logger *zap.SugaredLogger
}

// Option customizes the builder service.
type Option func(s *Service)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a builder backed by the supplied runner.
func New(helperRunner *runner.Service, options ...Option) *Service {
	ret := &Service{runner: helperRunner}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop().Sugar()
	}
	return ret
}

// BuildAll builds every unique (project, sanitizer) pair exactly once, in
// the order targets are listed, and stops at the first failure. The build
// log for a key is written under the artifact directory of the target that
// triggered it.
//
// When several targets share a build key only the first target's environment
// overrides are applied; the key is marked built regardless of which target
// triggered it. This is a documented policy, not an oversight.
func (s *Service) BuildAll(ctx context.Context, targets []*model.Target, artifactsURL string, baseEnv runner.Environ) (err error) {
	ctx, span := tracing.StartSpan(ctx, "builder.buildAll", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	built := make(map[model.BuildKey]bool)
	for _, target := range targets {
		if err = ctx.Err(); err != nil {
			return err
		}
		key := target.BuildKey()
		if built[key] {
			s.logger.Debugf("build %s already done, skipping target %s", key, target.Name)
			continue
		}
		s.logger.Infof("building %s (triggered by target %s)", key, target.Name)

		env := baseEnv.Merge(target.Environ())
		args := []string{
			"build_fuzzers",
			"--sanitizer=" + target.Sanitizer,
			target.Project,
		}
		logPath := filepath.Join(artifactsURL, target.Name, "build.log")
		if err = s.runner.Run(ctx, args, env, logPath, target.Name); err != nil {
			return err
		}
		built[key] = true
		progress.UpdateCtx(ctx, progress.Delta{Built: 1})
	}
	return nil
}
