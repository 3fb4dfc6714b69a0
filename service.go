package fuzzor

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/afs"
	"github.com/viant/fuzzor/internal/clock"
	"github.com/viant/fuzzor/internal/idgen"
	"github.com/viant/fuzzor/progress"
	"github.com/viant/fuzzor/service/builder"
	"github.com/viant/fuzzor/service/config"
	"github.com/viant/fuzzor/service/runner"
	"github.com/viant/fuzzor/service/scheduler"
	"github.com/viant/fuzzor/tracing"
	"go.uber.org/zap"
)

// Service is the orchestrator façade: it loads the target configuration,
// builds every unique (project, sanitizer) pair once and then runs all
// enabled targets under a bounded worker pool.
type Service struct {
	config        *Config
	fs            afs.Service
	logger        *zap.SugaredLogger
	listener      runner.Listener
	runnerOptions []runner.Option
	onProgress    func(progress.Progress)

	loader    *config.Service
	runner    *runner.Service
	builder   *builder.Service
	scheduler *scheduler.Service
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	runnerOptions := append([]runner.Option{
		runner.WithInterpreter(s.config.Interpreter),
		runner.WithLogger(s.logger),
	}, s.runnerOptions...)
	if s.listener != nil {
		runnerOptions = append(runnerOptions, runner.WithListener(s.listener))
	}
	s.runner = runner.New(s.config.HelperURL(), runnerOptions...)
	s.loader = config.New(config.WithFS(s.fs), config.WithLogger(s.logger))
	s.builder = builder.New(s.runner, builder.WithLogger(s.logger))
	s.scheduler = scheduler.New(s.runner, scheduler.WithLogger(s.logger))
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.config.Interpreter == "" {
		s.config.Interpreter = runner.DefaultInterpreter
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
}

// Run executes one full orchestration: load, build, run. Configuration
// errors surface before any helper process is spawned; the first build or
// run failure aborts the orchestration with full command context.
func (s *Service) Run(ctx context.Context) (err error) {
	if err = s.config.Validate(); err != nil {
		return err
	}

	sessionID := idgen.New()
	ctx, tracker := progress.WithNewTracker(ctx, sessionID, s.onProgress)
	ctx, span := tracing.StartSpan(ctx, "orchestrator.run", "INTERNAL")
	span.WithAttributes(map[string]string{"session.id": sessionID})
	defer func() { tracing.EndSpan(span, err) }()

	started := clock.Now()
	s.logger.Infof("orchestration %s starting", sessionID)

	helper := s.config.HelperURL()
	exists, err := s.fs.Exists(ctx, helper)
	if err != nil {
		return fmt.Errorf("failed to check helper %s: %w", helper, err)
	}
	if !exists {
		return fmt.Errorf("helper script not found at %s", helper)
	}

	targets, err := s.loader.Load(ctx, s.config.ConfigURL)
	if err != nil {
		return err
	}
	tracker.Update(progress.Delta{Total: len(targets)})
	s.logger.Infof("loaded %d enabled target(s) from %s", len(targets), s.config.ConfigURL)

	if err = os.MkdirAll(s.config.ArtifactsURL, 0o755); err != nil {
		return fmt.Errorf("failed to create artifacts directory %s: %w", s.config.ArtifactsURL, err)
	}

	baseEnv := runner.System()
	if err = s.builder.BuildAll(ctx, targets, s.config.ArtifactsURL, baseEnv); err != nil {
		return err
	}
	if err = s.scheduler.RunAll(ctx, targets, s.config.ArtifactsURL, s.config.MaxParallel, baseEnv); err != nil {
		return err
	}

	snapshot := tracker.Snapshot()
	s.logger.Infof("orchestration %s completed: %d target(s) in %s",
		sessionID, snapshot.CompletedTargets, clock.Now().Sub(started))
	return nil
}

// New creates a new orchestrator service.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}
