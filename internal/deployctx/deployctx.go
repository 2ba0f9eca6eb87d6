// Package deployctx defines the structured context that travels with every
// unit of deployment work: which system/client/release it belongs to, the
// cross-cutting pipeline tags, the per-location deployment data, and the
// iteration context that keys status entries.
//
// All types are plain values. Descending the hierarchy always goes through
// a copy-and-extend method, so concurrently running branches never share
// mutable state.
package deployctx

import (
	"maps"
	"strings"

	"github.com/specialistvlad/framedeploy/internal/iterctx"
	"github.com/specialistvlad/framedeploy/internal/model"
)

// DeploymentTuple identifies a system/client/release-state combination.
type DeploymentTuple struct {
	System       string
	Client       string
	ReleaseState string
}

// String returns the canonical "{system}-{client}-{release_state}" form.
func (t DeploymentTuple) String() string {
	return strings.Join([]string{t.System, t.Client, t.ReleaseState}, "-")
}

// Key returns the configuration lookup key of the tuple.
func (t DeploymentTuple) Key() model.DeploymentKey {
	return model.DeploymentKey{System: t.System, Client: t.Client, ReleaseState: t.ReleaseState}
}

// DeploymentContext carries pipeline tags and the currently active names
// as execution descends the hierarchy.
type DeploymentContext struct {
	CommitSHA    string
	PipelineID   string
	ReleaseID    string
	ReleaseState string

	Client       string
	System       string
	Subscription string
	Tenant       string
	Frame        string
	Application  string
	Step         string

	Iteration iterctx.IterationContext
}

// Clone returns an independent copy. IterationContext is immutable, so a
// shallow struct copy is a deep copy.
func (c DeploymentContext) Clone() DeploymentContext {
	return c
}

// Tags returns the tag set stamped on deployed resources. Empty values are
// omitted.
func (c DeploymentContext) Tags() map[string]string {
	tags := map[string]string{
		"commit_sha":    c.CommitSHA,
		"pipeline_id":   c.PipelineID,
		"release_id":    c.ReleaseID,
		"release_state": c.ReleaseState,
		"client":        c.Client,
		"system":        c.System,
		"frame":         c.Frame,
		"application":   c.Application,
	}
	maps.DeleteFunc(tags, func(_, v string) bool { return v == "" })
	return tags
}

// DeployDataView carries the per-location parameters of a deployment.
type DeployDataView struct {
	Location          string
	ServiceConnection string
	SubscriptionID    string
	TenantID          string
	PrimaryRegion     string
	SecondaryRegion   string
	ReleaseState      string
}

// Region resolves a step's region selector against this location. An
// empty string means the location has no such region.
func (d DeployDataView) Region(selector string) string {
	if selector == model.RegionSecondary {
		return d.SecondaryRegion
	}
	return d.PrimaryRegion
}

// FlattenedDeployment is one concrete unit of work.
type FlattenedDeployment struct {
	Context DeploymentContext
	Data    DeployDataView
}

// Clone returns an independent copy of the unit.
func (f FlattenedDeployment) Clone() FlattenedDeployment {
	return FlattenedDeployment{Context: f.Context.Clone(), Data: f.Data}
}

// WithFrame returns a copy descended into the named frame.
func (f FlattenedDeployment) WithFrame(name string) FlattenedDeployment {
	next := f.Clone()
	next.Context.Frame = name
	next.Context.Iteration = f.Context.Iteration.Child(name)
	return next
}

// WithApplication returns a copy descended into the named application.
func (f FlattenedDeployment) WithApplication(name string) FlattenedDeployment {
	next := f.Clone()
	next.Context.Application = name
	next.Context.Iteration = f.Context.Iteration.Child(name)
	return next
}

// WithStep returns a copy descended into the named step.
func (f FlattenedDeployment) WithStep(name string) FlattenedDeployment {
	next := f.Clone()
	next.Context.Step = name
	next.Context.Iteration = f.Context.Iteration.Child(name)
	return next
}

// ParameterFileKey returns the parameter file lookup key of the unit's
// current frame/application/step position.
func (f FlattenedDeployment) ParameterFileKey() model.ParameterFileKey {
	return model.ParameterFileKey{
		Frame:        f.Context.Frame,
		Application:  f.Context.Application,
		ReleaseState: f.Context.ReleaseState,
		Subscription: f.Context.Subscription,
		Step:         f.Context.Step,
	}
}
