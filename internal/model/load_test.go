package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

const tenancyHCL = `
tenant "main" {
  tenant_id = "11111111-1111-1111-1111-111111111111"
}

subscription "sub1" {
  subscription_id    = "22222222-2222-2222-2222-222222222222"
  tenant             = "main"
  service_connection = "sc-sub1"
}

system "sys1" {}
client "c1" {}
client "c2" {}
release_state "r1" {}

settings {
  static_secrets = {
    admin_user = "ops"
  }
}
`

const deploymentsHCL = `
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
`

const framesHCL = `
frame "network" {
  application "vnet" {
    step "deploy" {
      template   = "templates/vnet.json"
      parameters = "params/vnet.params.hcl"
    }
  }
}

frame "apps" {
  depends_on = ["network"]
  application "api" {
    step "infra" {
      template       = "/abs/api.json"
      resource_group = "rg-api"
      mode           = "Complete"
      region         = "secondary"
      overrides = {
        sku = "P1"
      }
    }
  }
}
`

func TestLoad_MergesFiles(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"tenancy.hcl":        tenancyHCL,
		"deployments.hcl":    deploymentsHCL,
		"frames/frames.hcl":  framesHCL,
		"frames/ignored.txt": "not hcl",
	})

	cfg, err := Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"sys1"}, cfg.Systems)
	assert.Equal(t, []string{"c1", "c2"}, cfg.Clients)
	assert.Equal(t, []string{"r1"}, cfg.ReleaseStates)
	assert.Equal(t, "ops", cfg.StaticSecrets["admin_user"])

	dep, ok := cfg.Deployment(DeploymentKey{System: "sys1", Client: "c1", ReleaseState: "r1"})
	require.True(t, ok)
	require.Len(t, dep.Targets, 1)
	require.Len(t, dep.Targets[0].Locations, 2)
	assert.Equal(t, "northeurope", dep.Targets[0].Locations[0].Secondary)
	assert.Empty(t, dep.Targets[0].Locations[1].Secondary)

	network, ok := cfg.Frame("network")
	require.True(t, ok)
	vnet := network.Applications[0].Steps[0]
	assert.Equal(t, filepath.Join(root, "frames", "templates", "vnet.json"), vnet.Template)
	assert.Equal(t, ModeIncremental, vnet.Mode)
	assert.Equal(t, RegionPrimary, vnet.Region)

	apps, ok := cfg.Frame("apps")
	require.True(t, ok)
	assert.Equal(t, []string{"network"}, apps.DependsOn)
	api := apps.Applications[0].Steps[0]
	assert.Equal(t, "/abs/api.json", api.Template)
	assert.Equal(t, ModeComplete, api.Mode)
	assert.Equal(t, RegionSecondary, api.Region)
	assert.Equal(t, map[string]string{"sku": "P1"}, api.Overrides)
}

func TestLoad_ParameterFileManifest(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"tenancy.hcl":     tenancyHCL,
		"deployments.hcl": deploymentsHCL,
		"frames.hcl":      framesHCL,
		"generated/manifest.hcl": `
parameter_file "network" "vnet" "r1" "sub1" "deploy" {
  path = "network.vnet.deploy.json"
}
`,
	})

	cfg, err := Load(context.Background(), root)
	require.NoError(t, err)

	p, ok := cfg.ParameterFile(ParameterFileKey{
		Frame: "network", Application: "vnet", ReleaseState: "r1", Subscription: "sub1", Step: "deploy",
	})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "generated", "network.vnet.deploy.json"), p)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		files       map[string]string
		errContains []string
	}{
		{
			name:        "no files",
			files:       map[string]string{"readme.txt": "x"},
			errContains: []string{"no .hcl configuration files"},
		},
		{
			name:        "syntax error",
			files:       map[string]string{"bad.hcl": `client "c1" {`},
			errContains: []string{"failed to parse HCL file"},
		},
		{
			name: "duplicate client",
			files: map[string]string{
				"a.hcl": `client "c1" {}`,
				"b.hcl": `client "c1" {}`,
			},
			errContains: []string{`client "c1" declared more than once`},
		},
		{
			name: "unknown references and cycle are all reported",
			files: map[string]string{
				"a.hcl": `
tenant "main" {
  tenant_id = "t"
}
subscription "sub1" {
  subscription_id = "s"
  tenant          = "nope"
}
system "sys1" {}
client "C1" {}
release_state "r1" {}
deployment "sys1" "c9" "r1" {
  target "sub9" {
    location "l1" {
      primary = "westeurope"
    }
  }
}
frame "a" {
  depends_on = ["b"]
}
frame "b" {
  depends_on = ["a", "ghost"]
}
`,
			},
			errContains: []string{
				`client name "C1" must be a lowercase identifier`,
				`references unknown tenant "nope"`,
				`references unknown client "c9"`,
				`targets unknown subscription "sub9"`,
				`depends on unknown frame "ghost"`,
				"cycle detected",
			},
		},
		{
			name: "duplicate location and target",
			files: map[string]string{
				"a.hcl": `
tenant "main" {
  tenant_id = "t"
}
subscription "sub1" {
  subscription_id = "s"
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
    location "l1" {
      primary = "eastus"
    }
  }
  target "sub1" {
    location "l2" {
      primary = "japaneast"
    }
  }
}
`,
			},
			errContains: []string{
				`target "sub1" declares location "l1" more than once`,
				`targets subscription "sub1" more than once`,
			},
		},
		{
			name: "bad step mode",
			files: map[string]string{
				"a.hcl": `
frame "f1" {
  application "a1" {
    step "s1" {
      template = "t.json"
      mode     = "Sideways"
    }
  }
}
`,
			},
			errContains: []string{`invalid mode "Sideways"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := writeFiles(t, tc.files)
			cfg, err := Load(context.Background(), root)
			require.Error(t, err)
			assert.Nil(t, cfg)
			for _, s := range tc.errContains {
				assert.ErrorContains(t, err, s)
			}
		})
	}
}

func TestFrameGraph(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Frames = []*Frame{
		{Name: "network"},
		{Name: "data", DependsOn: []string{"network"}},
		{Name: "apps", DependsOn: []string{"data", "network"}},
	}

	g, err := FrameGraph(cfg)
	require.NoError(t, err)
	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"network"}, {"data"}, {"apps"}}, levels)
}

func TestLoad_SkipsParameterSources(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"tenancy.hcl":            tenancyHCL,
		"deployments.hcl":        deploymentsHCL,
		"frames.hcl":             framesHCL,
		"params/vnet.params.hcl": `address_space = "10.0.0.0/16"`,
	})

	_, err := Load(context.Background(), root)

	require.NoError(t, err)
}

func TestValidate_DuplicateLocations(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Systems = []string{"sys1"}
	cfg.Clients = []string{"c1"}
	cfg.ReleaseStates = []string{"r1"}
	cfg.Tenants["main"] = &Tenant{Name: "main", TenantID: "t"}
	cfg.Subscriptions["sub1"] = &Subscription{Name: "sub1", SubscriptionID: "s", Tenant: "main"}
	cfg.AddDeployment(&Deployment{
		System: "sys1", Client: "c1", ReleaseState: "r1",
		Targets: []*Target{{
			Subscription: "sub1",
			Locations: []*Location{
				{Name: "l1", Primary: "westeurope"},
				{Name: "l2", Primary: "eastus"},
			},
		}},
	})
	require.NoError(t, Validate(cfg))

	dep, _ := cfg.Deployment(DeploymentKey{System: "sys1", Client: "c1", ReleaseState: "r1"})
	dep.Targets[0].Locations[1].Name = "l1"

	assert.ErrorContains(t, Validate(cfg), `target "sub1" declares location "l1" more than once`)
}
