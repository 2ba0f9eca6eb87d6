package integration_tests

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/framedeploy/internal/app"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/status"
	"github.com/specialistvlad/framedeploy/internal/testutil"
	"github.com/stretchr/testify/require"
)

const tenancyHCL = `
tenant "main" {
  tenant_id = "tenant-id-main"
}

subscription "sub1" {
  subscription_id    = "sub-id-1"
  tenant             = "main"
  service_connection = "sc-sub1"
}

system "sys1" {}
client "c1" {}
release_state "r1" {}

deployment "sys1" "c1" "r1" {
  target "sub1" {
    location "l1" {
      primary = "westeurope"
    }
  }
}
`

// executionRecord holds the start and end times of one step.
type executionRecord struct {
	Start time.Time
	End   time.Time
}

// timingBackend sleeps for every deployment and records when each template
// ran, keyed by the template's base name.
type timingBackend struct {
	mu      sync.Mutex
	sleep   time.Duration
	records map[string]*executionRecord
}

func newTimingBackend(sleep time.Duration) *timingBackend {
	return &timingBackend{sleep: sleep, records: make(map[string]*executionRecord)}
}

func (b *timingBackend) Deploy(ctx context.Context, req executor.DeployRequest) error {
	name := strings.TrimSuffix(filepath.Base(req.TemplatePath), ".json")
	start := time.Now()

	select {
	case <-time.After(b.sleep):
	case <-ctx.Done():
		return ctx.Err()
	}

	b.mu.Lock()
	b.records[name] = &executionRecord{Start: start, End: time.Now()}
	b.mu.Unlock()
	return nil
}

func (b *timingBackend) Validate(ctx context.Context, req executor.DeployRequest) error {
	return b.Deploy(ctx, req)
}

func (b *timingBackend) record(t *testing.T, name string) *executionRecord {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.records[name]
	require.True(t, ok, "template %s never ran", name)
	return r
}

// runRelease writes the frames next to the shared tenancy, creates a
// template file per name and deploys release r1.
func runRelease(t *testing.T, framesHCL string, backend executor.Backend, templates ...string) status.State {
	t.Helper()
	files := map[string]string{
		"tenancy.hcl": tenancyHCL,
		"frames.hcl":  framesHCL,
	}
	for _, name := range templates {
		files["templates/"+name+".json"] = `{}`
	}
	root := testutil.WriteFiles(t, files)

	cfg, err := app.NewConfig(app.Config{
		ConfigPaths:  []string{root},
		ReleaseState: "r1",
		LogLevel:     "debug",
		OutputDir:    t.TempDir(),
		NoColor:      true,
		PollInterval: 5 * time.Millisecond,
		MaxAttempts:  1000,
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := app.NewApp(&bytes.Buffer{}, cfg, app.WithBackend(backend), app.WithLogWriter(logs))
	require.NoError(t, err)

	verdict, err := a.Run(context.Background(), executor.ModeDeploy)
	require.NoError(t, err, "logs:\n%s", logs.String())
	return verdict
}
