package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/fuzzor"
	"github.com/viant/fuzzor/policy"
	"github.com/viant/fuzzor/progress"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

var options struct {
	config      string
	artifacts   string
	ossFuzz     string
	maxParallel int
	logLevel    string
	traceFile   string
	only        []string
	skip        []string
}

var rootCmd = &cobra.Command{
	Use:           "fuzzor",
	Short:         "Builds and runs OSS-Fuzz targets inside the container",
	Long:          "Fuzzor reads a declarative fuzz target document, builds enabled projects once and runs each target in parallel while streaming logs to per-target artifact directories for later triage.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOrchestration,
}

func main() {
	rootCmd.Version = version

	defaults := fuzzor.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&options.config, "config", defaults.ConfigURL, "fuzz target document location")
	flags.StringVar(&options.artifacts, "artifacts", defaults.ArtifactsURL, "artifact directory root")
	flags.StringVar(&options.ossFuzz, "oss-fuzz", defaults.OSSFuzzURL, "OSS-Fuzz checkout location")
	flags.IntVar(&options.maxParallel, "max-parallel", defaults.MaxParallel, "maximum number of fuzzers to run in parallel")
	flags.StringVar(&options.logLevel, "log-level", defaultLogLevel(), "log level (debug|info|warning|error)")
	flags.StringVar(&options.traceFile, "trace", "", "write OpenTelemetry traces to this file")
	flags.StringSliceVar(&options.only, "only", nil, "run only the listed targets")
	flags.StringSliceVar(&options.skip, "skip", nil, "skip the listed targets")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func runOrchestration(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(options.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(options.only)+len(options.skip) > 0 {
		ctx = policy.WithPolicy(ctx, &policy.Policy{AllowList: options.only, BlockList: options.skip})
	}

	serviceOptions := []fuzzor.Option{
		fuzzor.WithConfig(&fuzzor.Config{
			ConfigURL:    options.config,
			ArtifactsURL: options.artifacts,
			OSSFuzzURL:   options.ossFuzz,
			MaxParallel:  options.maxParallel,
		}),
		fuzzor.WithLogger(sugar),
		fuzzor.WithListener(func(label, line string) {
			sugar.Infof("[%s] %s", label, line)
		}),
		fuzzor.WithProgressCallback(func(p progress.Progress) {
			sugar.Debugf("progress: %d/%d completed, %d failed, %d running",
				p.CompletedTargets, p.TotalTargets, p.FailedTargets, p.RunningTargets)
		}),
	}
	if options.traceFile != "" {
		serviceOptions = append(serviceOptions, fuzzor.WithTracing("fuzzor", version, options.traceFile))
	}

	if err := fuzzor.New(serviceOptions...).Run(ctx); err != nil {
		if ctx.Err() != nil {
			sugar.Warnf("interrupted by user")
			return context.Canceled
		}
		sugar.Errorf("orchestration failed: %v", err)
		return err
	}
	return nil
}

// defaultLogLevel honours the ORCHESTRATOR_LOG_LEVEL environment variable.
func defaultLogLevel() string {
	if level := os.Getenv("ORCHESTRATOR_LOG_LEVEL"); level != "" {
		return strings.ToLower(level)
	}
	return "info"
}

// newLogger builds a development logger for debug/info levels and a
// production logger for warn and above.
func newLogger(level string) (*zap.Logger, error) {
	normalized := strings.ToLower(level)
	if normalized == "warning" {
		normalized = "warn"
	}
	parsed, err := zapcore.ParseLevel(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	if parsed >= zapcore.WarnLevel {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(parsed)
		return config.Build()
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(parsed)
	return config.Build()
}
