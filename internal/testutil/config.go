package testutil

import "github.com/specialistvlad/framedeploy/internal/model"

// ScenarioConfig builds the reference configuration: client c1, system sys1,
// release state r1, subscription sub1 in tenant main with locations l1 and
// l2, and one frame f1 holding application a1 with a single step.
func ScenarioConfig() *model.Configuration {
	cfg := model.NewConfiguration()
	cfg.Systems = []string{"sys1"}
	cfg.Clients = []string{"c1"}
	cfg.ReleaseStates = []string{"r1"}
	cfg.Tenants["main"] = &model.Tenant{Name: "main", TenantID: "tenant-id-main"}
	cfg.Subscriptions["sub1"] = &model.Subscription{
		Name:              "sub1",
		SubscriptionID:    "sub-id-1",
		Tenant:            "main",
		ServiceConnection: "sc-sub1",
	}
	cfg.AddDeployment(&model.Deployment{
		System:       "sys1",
		Client:       "c1",
		ReleaseState: "r1",
		Targets: []*model.Target{{
			Subscription: "sub1",
			Locations: []*model.Location{
				{Name: "l1", Primary: "westeurope", Secondary: "northeurope"},
				{Name: "l2", Primary: "eastus"},
			},
		}},
	})
	cfg.Frames = []*model.Frame{{
		Name: "f1",
		Applications: []*model.Application{{
			Name:  "a1",
			Steps: []*model.Step{Step("s1")},
		}},
	}}
	return cfg
}

// Step returns a step with defaults applied and a dummy template.
func Step(name string) *model.Step {
	return &model.Step{
		Name:     name,
		Template: "templates/" + name + ".json",
		Mode:     model.ModeIncremental,
		Region:   model.RegionPrimary,
	}
}
