package view

import (
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/model"
)

// SubscriptionView is a DeploymentView narrowed to one subscription.
type SubscriptionView struct {
	deployment   *DeploymentView
	name         string
	subscription *model.Subscription
	tenant       *model.Tenant
}

// NewSubscriptionView validates that name is a declared subscription whose
// tenant reference resolves.
func NewSubscriptionView(dv *DeploymentView, name string) (*SubscriptionView, error) {
	cfg := dv.release.cfg
	sub, ok := cfg.Subscription(name)
	if !ok {
		return nil, &Error{Kind: "subscription", Name: name}
	}
	tenant, ok := cfg.Tenant(sub.Tenant)
	if !ok {
		return nil, &Error{Kind: "tenant", Name: sub.Tenant}
	}
	return &SubscriptionView{deployment: dv, name: name, subscription: sub, tenant: tenant}, nil
}

// Name returns the subscription name.
func (v *SubscriptionView) Name() string {
	return v.name
}

// DeployData returns one DeployDataView per location declared for this
// subscription under the view's deployment tuple.
func (v *SubscriptionView) DeployData() []deployctx.DeployDataView {
	dep, ok := v.deployment.release.cfg.Deployment(v.deployment.tuple.Key())
	if !ok {
		return nil
	}
	target, ok := dep.Target(v.name)
	if !ok {
		return nil
	}

	data := make([]deployctx.DeployDataView, 0, len(target.Locations))
	for _, loc := range target.Locations {
		data = append(data, deployctx.DeployDataView{
			Location:          loc.Name,
			ServiceConnection: v.subscription.ServiceConnection,
			SubscriptionID:    v.subscription.SubscriptionID,
			TenantID:          v.tenant.TenantID,
			PrimaryRegion:     loc.Primary,
			SecondaryRegion:   loc.Secondary,
			ReleaseState:      v.deployment.release.dctx.ReleaseState,
		})
	}
	return data
}
