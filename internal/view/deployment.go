package view

import (
	"github.com/specialistvlad/framedeploy/internal/deployctx"
)

// DeploymentView is a ReleaseView narrowed to one deployment tuple.
type DeploymentView struct {
	release *ReleaseView
	tuple   deployctx.DeploymentTuple
}

// NewDeploymentView validates each field of tuple against the configuration.
func NewDeploymentView(rv *ReleaseView, tuple deployctx.DeploymentTuple) (*DeploymentView, error) {
	cfg := rv.cfg
	if !cfg.HasClient(tuple.Client) {
		return nil, &Error{Kind: "client", Name: tuple.Client}
	}
	if !cfg.HasSystem(tuple.System) {
		return nil, &Error{Kind: "system", Name: tuple.System}
	}
	if !cfg.HasReleaseState(tuple.ReleaseState) {
		return nil, &Error{Kind: "release state", Name: tuple.ReleaseState}
	}
	return &DeploymentView{release: rv, tuple: tuple}, nil
}

// Tuple returns the deployment tuple of the view.
func (v *DeploymentView) Tuple() deployctx.DeploymentTuple {
	return v.tuple
}

// Subscriptions returns one SubscriptionView per subscription listed for
// the tuple, or none when the tuple has no deployment entry.
func (v *DeploymentView) Subscriptions() ([]*SubscriptionView, error) {
	dep, ok := v.release.cfg.Deployment(v.tuple.Key())
	if !ok {
		return nil, nil
	}

	views := make([]*SubscriptionView, 0, len(dep.Targets))
	for _, target := range dep.Targets {
		sv, err := NewSubscriptionView(v, target.Subscription)
		if err != nil {
			return nil, err
		}
		views = append(views, sv)
	}
	return views, nil
}
