package integration_tests

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/framedeploy/internal/app"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/testutil"
	"github.com/stretchr/testify/require"
)

const tenancyHCL = `
tenant "main" {
  tenant_id = "tenant-id-main"
}

subscription "sub1" {
  subscription_id = "sub-id-1"
  tenant          = "main"
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

// failingBackend fails every deployment whose template base name is listed
// in failOn and records the names of the templates it was asked to deploy.
type failingBackend struct {
	mu     sync.Mutex
	failOn map[string]string
	ran    []string
}

func (b *failingBackend) Deploy(_ context.Context, req executor.DeployRequest) error {
	name := strings.TrimSuffix(filepath.Base(req.TemplatePath), ".json")
	b.mu.Lock()
	b.ran = append(b.ran, name)
	b.mu.Unlock()
	if msg, ok := b.failOn[name]; ok {
		return errors.New(msg)
	}
	return nil
}

func (b *failingBackend) Validate(ctx context.Context, req executor.DeployRequest) error {
	return b.Deploy(ctx, req)
}

func (b *failingBackend) executed() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.ran...)
}

// writeRelease writes the shared tenancy, the given frames and an empty
// template per name, and returns the directory.
func writeRelease(t *testing.T, framesHCL string, templates ...string) string {
	t.Helper()
	files := map[string]string{
		"tenancy.hcl": tenancyHCL,
		"frames.hcl":  framesHCL,
	}
	for _, name := range templates {
		files["templates/"+name+".json"] = `{}`
	}
	return testutil.WriteFiles(t, files)
}

func newApp(t *testing.T, root string, backend executor.Backend) (*app.App, error) {
	t.Helper()
	cfg, err := app.NewConfig(app.Config{
		ConfigPaths:  []string{root},
		ReleaseState: "r1",
		OutputDir:    t.TempDir(),
		NoColor:      true,
		PollInterval: 5 * time.Millisecond,
		MaxAttempts:  1000,
	})
	require.NoError(t, err)
	return app.NewApp(&bytes.Buffer{}, cfg, app.WithBackend(backend), app.WithLogWriter(&testutil.SafeBuffer{}))
}
