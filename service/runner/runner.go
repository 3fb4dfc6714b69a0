package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/viant/fuzzor/internal/clock"
	"github.com/viant/fuzzor/tracing"
	"go.uber.org/zap"
)

// DefaultInterpreter runs the OSS-Fuzz helper script.
const DefaultInterpreter = "python3"

// Error describes a failed helper invocation: either a non-zero exit status
// or a spawn failure (Cause set, ExitCode zero).
type Error struct {
	Label    string
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("helper command for %s failed to start: %v", e.Label, e.Cause)
	}
	return fmt.Sprintf("helper command for %s failed (exit %d)", e.Label, e.ExitCode)
}

// Unwrap exposes the spawn failure cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Listener observes helper output lines as they are produced, tagged with
// the invocation label. Lines arrive in the exact order the process emitted
// them; the callback must therefore be fast or hand off to its own queue.
type Listener func(label, line string)

// Service runs helper command invocations.
type Service struct {
	interpreter string
	helper      string
	listener    Listener
	logger      *zap.SugaredLogger
}

// Option customizes the runner service.
type Option func(s *Service)

// WithInterpreter overrides the interpreter the helper script is run with.
func WithInterpreter(interpreter string) Option {
	return func(s *Service) { s.interpreter = interpreter }
}

// WithListener registers a live output observer.
func WithListener(listener Listener) Option {
	return func(s *Service) { s.listener = listener }
}

// WithLogger sets the logger used for command diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a runner for the helper script at the supplied path.
func New(helper string, options ...Option) *Service {
	ret := &Service{helper: helper, interpreter: DefaultInterpreter}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop().Sugar()
	}
	return ret
}

// Run spawns one helper invocation with the supplied argument list and
// environment and blocks until it terminates. Combined stdout/stderr is
// appended line by line to the log file at logPath and forwarded to the
// listener. Writes to the log file are unbuffered so partial logs survive a
// crash. A non-zero exit or a spawn failure yields *Error.
func (s *Service) Run(ctx context.Context, args []string, env Environ, logPath, label string) (err error) {
	command := append([]string{s.interpreter, s.helper}, args...)
	commandLine := strings.Join(command, " ")

	ctx, span := tracing.StartSpan(ctx, "helper "+label, "CLIENT")
	span.WithAttributes(map[string]string{"helper.command": commandLine, "helper.log": logPath})
	defer func() { tracing.EndSpan(span, err) }()

	s.logger.Debugf("executing helper command: %s", commandLine)
	started := clock.Now()

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory for %s: %w", label, err)
	}
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", logPath, err)
	}
	defer logFile.Close()

	if _, err = fmt.Fprintf(logFile, "\n=== Running (%s): %s ===\n", label, commandLine); err != nil {
		return fmt.Errorf("failed to write log header for %s: %w", label, err)
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = env.Slice()

	// A single pipe carries both streams so line order matches what the
	// process produced.
	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer
	// Closing the reader on every exit path unblocks exec's copier even when
	// the loop below stops before draining the pipe.
	defer reader.CloseWithError(io.ErrClosedPipe)

	if err = cmd.Start(); err != nil {
		return &Error{Label: label, Cause: err}
	}

	waitCh := make(chan error, 1)
	go func() {
		waitErr := cmd.Wait()
		_ = writer.Close()
		waitCh <- waitErr
	}()

	// ReadString keeps arbitrarily long lines intact; fuzzers emit lines far
	// beyond any fixed token size.
	buffered := bufio.NewReader(reader)
	for {
		line, readErr := buffered.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			if _, err = logFile.WriteString(line + "\n"); err != nil {
				return fmt.Errorf("failed to append log %s: %w", logPath, err)
			}
			if s.listener != nil {
				s.listener(label, line)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read helper output for %s: %w", label, readErr)
		}
	}

	waitErr := <-waitCh
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code := exitErr.ExitCode()
			_, _ = fmt.Fprintf(logFile, "\nCommand failed with exit code %d\n", code)
			return &Error{Label: label, ExitCode: code}
		}
		return &Error{Label: label, Cause: waitErr}
	}

	s.logger.Debugf("helper command for %s completed in %s", label, clock.Now().Sub(started))
	return nil
}
