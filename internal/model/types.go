// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the entities referenced from a Configuration.
package model

// Step modes accepted by the deployment backend.
const (
	ModeIncremental = "Incremental"
	ModeComplete    = "Complete"
)

// Region selectors a step can deploy into.
const (
	RegionPrimary   = "primary"
	RegionSecondary = "secondary"
)

// Tenant is a directory that owns subscriptions.
type Tenant struct {
	Name     string
	TenantID string
}

// Subscription is a deployment target account.
type Subscription struct {
	Name              string
	SubscriptionID    string
	Tenant            string
	ServiceConnection string
}

// DeploymentKey identifies a deployment entry.
type DeploymentKey struct {
	System       string
	Client       string
	ReleaseState string
}

// Deployment lists the subscriptions and locations that serve a
// system/client/release combination.
type Deployment struct {
	System       string
	Client       string
	ReleaseState string
	Targets      []*Target
}

// Key returns the lookup key of the deployment.
func (d *Deployment) Key() DeploymentKey {
	return DeploymentKey{System: d.System, Client: d.Client, ReleaseState: d.ReleaseState}
}

// Target returns the target entry for a subscription name.
func (d *Deployment) Target(subscription string) (*Target, bool) {
	for _, t := range d.Targets {
		if t.Subscription == subscription {
			return t, true
		}
	}
	return nil, false
}

// Target is one subscription served by a deployment.
type Target struct {
	Subscription string
	Locations    []*Location
}

// Location is a primary region with an optional secondary (pair) region.
type Location struct {
	Name      string
	Primary   string
	Secondary string
}

// Frame is a named group of applications that deploy together.
type Frame struct {
	Name         string
	DependsOn    []string
	Applications []*Application
}

// Application is an ordered sequence of steps.
type Application struct {
	Name  string
	Steps []*Step
}

// Step is one deploy/validate action against a single resource group.
type Step struct {
	Name string
	// Template is the path of the deployment template.
	Template string
	// Parameters is the path of the parameter source file; empty when the
	// template takes no parameters.
	Parameters string
	// ResourceGroup overrides the derived resource group name when set.
	ResourceGroup string
	// Mode is ModeIncremental or ModeComplete.
	Mode string
	// DeploymentName is passed to the backend as the deployment name when set.
	DeploymentName string
	// Region selects RegionPrimary or RegionSecondary of the location.
	Region string
	// Overrides are individual parameter values passed after the parameter file.
	Overrides map[string]string
}

// ParameterFileKey identifies one step instance for parameter file lookup.
type ParameterFileKey struct {
	Frame        string
	Application  string
	ReleaseState string
	Subscription string
	Step         string
}
