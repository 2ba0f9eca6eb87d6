package view

import (
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/iterctx"
	"github.com/specialistvlad/framedeploy/internal/model"
)

// ReleaseView is the configuration narrowed to one release state.
type ReleaseView struct {
	cfg  *model.Configuration
	dctx deployctx.DeploymentContext
}

// NewReleaseView validates that dctx.ReleaseState is declared in cfg.
func NewReleaseView(cfg *model.Configuration, dctx deployctx.DeploymentContext) (*ReleaseView, error) {
	if !cfg.HasReleaseState(dctx.ReleaseState) {
		return nil, &Error{Kind: "release state", Name: dctx.ReleaseState}
	}
	return &ReleaseView{cfg: cfg, dctx: dctx.Clone()}, nil
}

// Deployments returns one DeploymentView per client x system pair that has
// a deployment entry for the release state. Pairs without an entry are
// skipped: no deployment is defined for them.
func (v *ReleaseView) Deployments() ([]*DeploymentView, error) {
	var views []*DeploymentView
	for _, client := range v.cfg.Clients {
		for _, system := range v.cfg.Systems {
			tuple := deployctx.DeploymentTuple{System: system, Client: client, ReleaseState: v.dctx.ReleaseState}
			if _, ok := v.cfg.Deployment(tuple.Key()); !ok {
				continue
			}
			dv, err := NewDeploymentView(v, tuple)
			if err != nil {
				return nil, err
			}
			views = append(views, dv)
		}
	}
	return views, nil
}

// Flatten returns every concrete deployment unit of the release. Unit
// iteration contexts are unique; two units rendering to the same string,
// e.g. tuples a-b/c and a/b-c, fail with a duplicate *Error.
func (v *ReleaseView) Flatten() ([]deployctx.FlattenedDeployment, error) {
	deployments, err := v.Deployments()
	if err != nil {
		return nil, err
	}

	var units []deployctx.FlattenedDeployment
	seen := make(map[string]bool)
	for _, dv := range deployments {
		subscriptions, err := dv.Subscriptions()
		if err != nil {
			return nil, err
		}
		for _, sv := range subscriptions {
			for _, data := range sv.DeployData() {
				tuple := dv.Tuple()
				dctx := v.dctx.Clone()
				dctx.Client = tuple.Client
				dctx.System = tuple.System
				dctx.Subscription = sv.name
				dctx.Tenant = sv.subscription.Tenant
				dctx.Iteration = iterctx.New(tuple.String(), sv.name, data.Location)
				key := dctx.Iteration.String()
				if seen[key] {
					return nil, &Error{Kind: "unit", Name: key, Duplicate: true}
				}
				seen[key] = true
				units = append(units, deployctx.FlattenedDeployment{Context: dctx, Data: data})
			}
		}
	}
	return units, nil
}
