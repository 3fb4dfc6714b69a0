package fuzzor

import (
	"github.com/viant/afs"
	"github.com/viant/fuzzor/progress"
	"github.com/viant/fuzzor/service/runner"
	"github.com/viant/fuzzor/tracing"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customizes the orchestrator service.
type Option func(s *Service)

// WithConfig sets the orchestrator configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithFS sets the file service used for config and helper lookups.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithListener registers a live observer for helper output lines.
func WithListener(listener runner.Listener) Option {
	return func(s *Service) { s.listener = listener }
}

// WithRunnerOptions lets the caller supply additional options passed to
// runner.New (e.g. overriding the helper interpreter in tests).
func WithRunnerOptions(opts ...runner.Option) Option {
	return func(s *Service) { s.runnerOptions = append(s.runnerOptions, opts...) }
}

// WithProgressCallback registers a callback invoked after every progress
// counter update.
func WithProgressCallback(cb func(progress.Progress)) Option {
	return func(s *Service) { s.onProgress = cb }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times – the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. This enables integrations with exporters other than the
// built-in stdout exporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
