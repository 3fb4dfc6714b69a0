package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fuzzor/model"
	"github.com/viant/fuzzor/progress"
	"github.com/viant/fuzzor/service/runner"
)

// schedulerHelper records each started target in the RECORD file, detects
// concurrent invocations via a lock directory, and fails for targets whose
// fuzz target name starts with "boom".
const schedulerHelper = `#!/bin/sh
echo "$FUZZ_TARGET" >> "$RECORD"
if ! mkdir "$LOCK" 2>/dev/null; then
  echo "overlap" >> "$RECORD.overlap"
else
  sleep 0.1
  rmdir "$LOCK"
fi
echo "fuzzing $FUZZ_PROJECT/$FUZZ_TARGET sanitizer=$SANITIZER artifacts=$ARTIFACT_DIR"
case "$FUZZ_TARGET" in
  boom*) exit 2 ;;
esac
`

func newScheduler(t *testing.T) (*Service, runner.Environ, string) {
	t.Helper()
	dir := t.TempDir()
	helper := filepath.Join(dir, "helper.sh")
	assert.NoError(t, os.WriteFile(helper, []byte(schedulerHelper), 0o755))
	record := filepath.Join(dir, "record.txt")
	env := runner.System().Merge(map[string]string{
		"RECORD": record,
		"LOCK":   filepath.Join(dir, "lock"),
	})
	return New(runner.New(helper, runner.WithInterpreter("/bin/sh"))), env, record
}

func target(name, fuzzTarget string) *model.Target {
	return &model.Target{
		Name:          name,
		Project:       "p1",
		FuzzTarget:    fuzzTarget,
		Enabled:       true,
		Sanitizer:     "address",
		MaxRunSeconds: 60,
	}
}

func startedTargets(t *testing.T, record string) []string {
	t.Helper()
	data, err := os.ReadFile(record)
	if os.IsNotExist(err) {
		return nil
	}
	assert.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestService_RunAll_AllTargetsSucceed(t *testing.T) {
	service, env, record := newScheduler(t)
	artifacts := t.TempDir()
	targets := []*model.Target{target("a", "fz1"), target("b", "fz2"), target("c", "fz3")}

	ctx, tracker := progress.WithNewTracker(context.Background(), "test", nil)
	err := service.RunAll(ctx, targets, artifacts, 2, env)
	assert.NoError(t, err)

	assert.ElementsMatch(t, []string{"fz1", "fz2", "fz3"}, startedTargets(t, record))
	snapshot := tracker.Snapshot()
	assert.Equal(t, 3, snapshot.CompletedTargets)
	assert.Equal(t, 0, snapshot.FailedTargets)
	assert.Equal(t, 0, snapshot.RunningTargets)

	// every target got its own run log
	for _, name := range []string{"a", "b", "c"} {
		data, readErr := os.ReadFile(filepath.Join(artifacts, name, "run.log"))
		assert.NoError(t, readErr)
		assert.Contains(t, string(data), "run_fuzzer --sanitizer=address --max_total_time=60")
	}
}

func TestService_RunAll_ConcurrencyBound(t *testing.T) {
	service, env, record := newScheduler(t)
	targets := []*model.Target{target("a", "fz1"), target("b", "fz2"), target("c", "fz3"), target("d", "fz4")}

	err := service.RunAll(context.Background(), targets, t.TempDir(), 1, env)
	assert.NoError(t, err)

	// with a single worker no two invocations may overlap
	_, statErr := os.Stat(record + ".overlap")
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, 4, len(startedTargets(t, record)))
}

func TestService_RunAll_InjectedEnvironmentWins(t *testing.T) {
	service, env, _ := newScheduler(t)
	artifacts := t.TempDir()
	tampered := target("a", "fz1")
	tampered.Environment = map[string]string{"SANITIZER": "tampered"}

	err := service.RunAll(context.Background(), []*model.Target{tampered}, artifacts, 1, env)
	assert.NoError(t, err)

	data, readErr := os.ReadFile(filepath.Join(artifacts, "a", "run.log"))
	assert.NoError(t, readErr)
	assert.Contains(t, string(data), "sanitizer=address")
}

func TestService_RunAll_DictionaryAndFuzzerArgs(t *testing.T) {
	service, env, _ := newScheduler(t)
	artifacts := t.TempDir()
	configured := target("a", "fz1")
	configured.Dictionary = "/corpus/words.dict"
	configured.FuzzerArgs = []string{"-rss_limit_mb=2048"}

	err := service.RunAll(context.Background(), []*model.Target{configured}, artifacts, 1, env)
	assert.NoError(t, err)

	data, readErr := os.ReadFile(filepath.Join(artifacts, "a", "run.log"))
	assert.NoError(t, readErr)
	assert.Contains(t, string(data), "--dict /corpus/words.dict p1 fz1 -- -rss_limit_mb=2048")
}

func TestService_RunAll_FirstFailureWins(t *testing.T) {
	service, env, record := newScheduler(t)
	targets := []*model.Target{target("a", "fz1"), target("b", "boom"), target("c", "fz3")}

	ctx, tracker := progress.WithNewTracker(context.Background(), "test", nil)
	err := service.RunAll(ctx, targets, t.TempDir(), 1, env)
	if !assert.Error(t, err) {
		return
	}
	var targetErr *TargetError
	if assert.ErrorAs(t, err, &targetErr) {
		assert.Equal(t, "b", targetErr.Target)
		var processErr *runner.Error
		if assert.ErrorAs(t, targetErr.Cause, &processErr) {
			assert.Equal(t, 2, processErr.ExitCode)
		}
	}

	// with a single worker the failure of b prevents c from ever starting
	assert.Equal(t, []string{"fz1", "boom"}, startedTargets(t, record))
	snapshot := tracker.Snapshot()
	assert.Equal(t, 1, snapshot.CompletedTargets)
	assert.Equal(t, 1, snapshot.FailedTargets)
	assert.Equal(t, 1, snapshot.CancelledTargets)
}

func TestService_RunAll_ZeroParallelismClampedToOne(t *testing.T) {
	service, env, record := newScheduler(t)

	err := service.RunAll(context.Background(), []*model.Target{target("a", "fz1")}, t.TempDir(), 0, env)
	assert.NoError(t, err)
	assert.Equal(t, []string{"fz1"}, startedTargets(t, record))
}
