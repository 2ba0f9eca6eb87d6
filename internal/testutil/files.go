package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ScenarioHCL is ScenarioConfig in configuration file form, with the step
// pointing at a template and parameter source written next to it.
const ScenarioHCL = `
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
      primary   = "westeurope"
      secondary = "northeurope"
    }
    location "l2" {
      primary = "eastus"
    }
  }
}

frame "f1" {
  application "a1" {
    step "s1" {
      template   = "templates/s1.json"
      parameters = "params/s1.params.hcl"
    }
  }
}
`

// WriteFiles writes files (relative name to content) under a fresh temp
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// WriteScenario writes the scenario configuration tree and returns its root.
func WriteScenario(t *testing.T) string {
	t.Helper()
	return WriteFiles(t, map[string]string{
		"main.hcl":             ScenarioHCL,
		"templates/s1.json":    `{"resources": []}`,
		"params/s1.params.hcl": `location = location.region`,
	})
}
