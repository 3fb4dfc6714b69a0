package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/viant/fuzzor/model"
	"github.com/viant/fuzzor/progress"
	"github.com/viant/fuzzor/service/messaging"
	"github.com/viant/fuzzor/service/messaging/memory"
	"github.com/viant/fuzzor/service/runner"
	"github.com/viant/fuzzor/tracing"
	"go.uber.org/zap"
)

// TargetError identifies the first target whose run phase failed and the
// underlying cause.
type TargetError struct {
	Target string
	Cause  error
}

// Error implements the error interface.
func (e *TargetError) Error() string {
	return fmt.Sprintf("target %s failed: %v", e.Target, e.Cause)
}

// Unwrap exposes the underlying cause.
func (e *TargetError) Unwrap() error {
	return e.Cause
}

// Outcome is the result of one target's full run lifecycle.
type Outcome struct {
	Target string
	Err    error
}

// Service executes the run phase of an orchestration.
type Service struct {
	runner *runner.Service
	logger *zap.SugaredLogger
	queue  func(size int) messaging.Queue[model.Target]
}

// Option customizes the scheduler service.
type Option func(s *Service)

// WithLogger sets the logger used for per-target outcome reporting.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithQueueProvider overrides the work queue implementation.
func WithQueueProvider(provider func(size int) messaging.Queue[model.Target]) Option {
	return func(s *Service) { s.queue = provider }
}

// New creates a run scheduler backed by the supplied runner.
func New(helperRunner *runner.Service, options ...Option) *Service {
	ret := &Service{runner: helperRunner}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop().Sugar()
	}
	if ret.queue == nil {
		ret.queue = func(size int) messaging.Queue[model.Target] {
			return memory.NewQueue[model.Target](size)
		}
	}
	return ret
}

// RunAll executes every target's run phase under a worker pool bounded by
// max(1, min(maxParallel, len(targets))). The first failing target
// determines the overall error; targets not yet dispatched at that point are
// cancelled and never started. Results of tasks that were already running
// when the failure occurred are still recorded and logged, but they cannot
// change the overall outcome.
func (s *Service) RunAll(ctx context.Context, targets []*model.Target, artifactsURL string, maxParallel int, baseEnv runner.Environ) (err error) {
	ctx, span := tracing.StartSpan(ctx, "scheduler.runAll", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	workers := maxParallel
	if workers < 1 {
		workers = 1
	}
	if workers > len(targets) {
		workers = len(targets)
	}
	span.WithAttributes(map[string]string{
		"scheduler.targets": strconv.Itoa(len(targets)),
		"scheduler.workers": strconv.Itoa(workers),
	})

	queue := s.queue(len(targets))
	for _, target := range targets {
		if qErr := queue.Publish(ctx, target); qErr != nil {
			return qErr
		}
	}
	queue.Close()

	// runCtx gates dispatch only: the runner never kills an already-running
	// helper process, so cancellation is best-effort by construction.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan Outcome, len(targets))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				msg, consumeErr := queue.Consume(runCtx)
				if consumeErr != nil {
					// Cancelled or drained; either way this worker is done.
					return
				}
				target := msg.T()
				progress.UpdateCtx(ctx, progress.Delta{Running: 1})
				runErr := s.runTarget(runCtx, target, artifactsURL, baseEnv)
				outcomes <- Outcome{Target: target.Name, Err: runErr}
				if runErr != nil {
					cancel()
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var firstFailure *TargetError
	dispatched := 0
	for outcome := range outcomes {
		dispatched++
		if outcome.Err != nil {
			progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1})
			s.logger.Errorf("target %s failed: %v", outcome.Target, outcome.Err)
			if firstFailure == nil {
				firstFailure = &TargetError{Target: outcome.Target, Cause: outcome.Err}
			}
			continue
		}
		progress.UpdateCtx(ctx, progress.Delta{Running: -1, Completed: 1})
		s.logger.Infof("target %s completed successfully", outcome.Target)
	}

	if cancelled := len(targets) - dispatched; cancelled > 0 {
		progress.UpdateCtx(ctx, progress.Delta{Cancelled: cancelled})
		s.logger.Warnf("%d target(s) cancelled before starting", cancelled)
	}
	if firstFailure != nil {
		return firstFailure
	}
	return ctx.Err()
}

// runTarget builds the run command line and executes one fuzzing session.
func (s *Service) runTarget(ctx context.Context, target *model.Target, artifactsURL string, baseEnv runner.Environ) error {
	artifactDir := filepath.Join(artifactsURL, target.Name)

	// Scheduler-injected variables win over target overrides, which win over
	// the inherited base environment.
	env := baseEnv.Merge(target.Environ()).Merge(map[string]string{
		"FUZZ_TARGET":  target.FuzzTarget,
		"FUZZ_PROJECT": target.Project,
		"SANITIZER":    target.Sanitizer,
		"ARTIFACT_DIR": artifactDir,
	})

	args := []string{
		"run_fuzzer",
		"--sanitizer=" + target.Sanitizer,
		"--max_total_time=" + strconv.Itoa(target.MaxRunSeconds),
	}
	if target.Dictionary != "" {
		args = append(args, "--dict", target.Dictionary)
	}
	args = append(args, target.Project, target.FuzzTarget)
	if len(target.FuzzerArgs) > 0 {
		args = append(args, "--")
		args = append(args, target.FuzzerArgs...)
	}
	return s.runner.Run(ctx, args, env, filepath.Join(artifactDir, "run.log"), target.Name)
}
