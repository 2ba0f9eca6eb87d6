package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/framedeploy/internal/app"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *stubBackend) Deploy(_ context.Context, _ executor.DeployRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.err
}

func (b *stubBackend) Validate(ctx context.Context, req executor.DeployRequest) error {
	return b.Deploy(ctx, req)
}

func execute(t *testing.T, ctx context.Context, backend *stubBackend, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(ctx, args, &out, &errOut, app.WithBackend(backend))
	t.Logf("stderr:\n%s", errOut.String())
	return out.String(), err
}

func scenarioArgs(t *testing.T, command string, extra ...string) []string {
	t.Helper()
	args := []string{
		command,
		"-c", testutil.WriteScenario(t),
		"--output-dir", t.TempDir(),
		"--no-color",
		"--log-level", "debug",
	}
	return append(args, extra...)
}

func TestExecute_Help(t *testing.T) {
	out, err := execute(t, context.Background(), &stubBackend{}, "--help")

	require.NoError(t, err)
	for _, want := range []string{"framedeploy", "deploy", "validate", "plan", "generate"} {
		assert.Contains(t, out, want)
	}
}

func TestExecute_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"deploy", "--no-such-flag"}, "unknown flag"},
		{"unknown command", []string{"destroy"}, "unknown command"},
		{"missing release state", []string{"deploy", "-c", "."}, "release state is required"},
		{"bad log format", []string{"plan", "-r", "r1", "--log-format", "xml"}, "invalid log format"},
		{"missing settings file", []string{"plan", "-r", "r1", "--settings", "/nonexistent/settings.yaml"}, "settings"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, context.Background(), &stubBackend{}, tc.args...)

			require.Error(t, err)
			assert.Equal(t, ExitUsage, ExitCode(err))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestExecute_Deploy(t *testing.T) {
	backend := &stubBackend{}

	out, err := execute(t, context.Background(), backend, scenarioArgs(t, "deploy", "-r", "r1")...)

	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
	assert.Contains(t, out, "✅ deploy success")
}

func TestExecute_ValidateFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("InvalidTemplate")}

	out, err := execute(t, context.Background(), backend, scenarioArgs(t, "validate", "-r", "r1")...)

	require.Error(t, err)
	assert.Equal(t, ExitFailed, ExitCode(err))
	assert.Contains(t, err.Error(), "InvalidTemplate")
	assert.Contains(t, out, "❌ validate failed")
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, &stubBackend{}, scenarioArgs(t, "deploy", "-r", "r1")...)

	require.Error(t, err)
	assert.Equal(t, ExitCancelled, ExitCode(err))
}

func TestExecute_ConfigurationError(t *testing.T) {
	_, err := execute(t, context.Background(), &stubBackend{}, scenarioArgs(t, "deploy", "-r", "unknown")...)

	require.Error(t, err)
	assert.Equal(t, ExitFailed, ExitCode(err))
	assert.Contains(t, err.Error(), `unknown release state "unknown"`)
}

func TestExecute_ReleaseStateFromEnvironment(t *testing.T) {
	t.Setenv("FRAMEDEPLOY_RELEASE_STATE", "r1")
	backend := &stubBackend{}

	_, err := execute(t, context.Background(), backend, scenarioArgs(t, "deploy")...)

	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestExecute_ConfigPathsFromEnvironment(t *testing.T) {
	extra := testutil.WriteFiles(t, map[string]string{
		"f2.hcl": `
frame "f2" {
  application "a2" {
    step "s2" { template = "t.json" }
  }
}
`,
	})
	t.Setenv("FRAMEDEPLOY_CONFIG", testutil.WriteScenario(t)+","+extra)

	out, err := execute(t, context.Background(), &stubBackend{}, "plan", "-r", "r1", "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "2 unit(s), 2 frame(s) in 1 wave(s)")
}

func TestSplitPaths(t *testing.T) {
	testCases := []struct {
		name string
		raw  []string
		want []string
	}{
		{"flag values", []string{"a", "b"}, []string{"a", "b"}},
		{"comma separated", []string{"a,b"}, []string{"a", "b"}},
		{"spaces and empties", []string{"a, b,", ",c"}, []string{"a", "b", "c"}},
		{"nothing", nil, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitPaths(tc.raw))
		})
	}
}

func TestExecute_SettingsFile(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"settings.yaml": "release-state: r1\nmax-attempts: 5\n",
	})
	backend := &stubBackend{}

	_, err := execute(t, context.Background(), backend,
		scenarioArgs(t, "deploy", "--settings", filepath.Join(dir, "settings.yaml"))...)

	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestExecute_Plan(t *testing.T) {
	backend := &stubBackend{}

	out, err := execute(t, context.Background(), backend, scenarioArgs(t, "plan", "-r", "r1")...)

	require.NoError(t, err)
	assert.Zero(t, backend.calls)
	assert.Contains(t, out, "sys1-c1-r1.sub1.l2")
	assert.Contains(t, out, "2 unit(s)")
}

func TestExecute_Generate(t *testing.T) {
	out, err := execute(t, context.Background(), &stubBackend{}, scenarioArgs(t, "generate", "-r", "r1")...)

	require.NoError(t, err)
	assert.Contains(t, out, "generated 1 parameter file(s)")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailed, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitCancelled, ExitCode(&ExitError{Code: ExitCancelled}))
}
