// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import "slices"

// Configuration is the validated, read-only configuration of one run.
//
// Slices keep declaration order so that every projection built on top of a
// Configuration iterates deterministically.
type Configuration struct {
	Systems       []string
	Clients       []string
	ReleaseStates []string

	Tenants       map[string]*Tenant
	Subscriptions map[string]*Subscription

	Deployments    map[DeploymentKey]*Deployment
	DeploymentKeys []DeploymentKey

	Frames []*Frame

	// ParameterFiles maps a step instance to a pre-generated parameter file.
	ParameterFiles map[ParameterFileKey]string

	// StaticSecrets are plain values exposed to parameter templates.
	StaticSecrets map[string]string
}

// NewConfiguration returns an empty Configuration with initialized maps.
func NewConfiguration() *Configuration {
	return &Configuration{
		Tenants:        make(map[string]*Tenant),
		Subscriptions:  make(map[string]*Subscription),
		Deployments:    make(map[DeploymentKey]*Deployment),
		ParameterFiles: make(map[ParameterFileKey]string),
		StaticSecrets:  make(map[string]string),
	}
}

// HasSystem reports whether name is a declared system.
func (c *Configuration) HasSystem(name string) bool {
	return slices.Contains(c.Systems, name)
}

// HasClient reports whether name is a declared client.
func (c *Configuration) HasClient(name string) bool {
	return slices.Contains(c.Clients, name)
}

// HasReleaseState reports whether name is a declared release state.
func (c *Configuration) HasReleaseState(name string) bool {
	return slices.Contains(c.ReleaseStates, name)
}

// Subscription looks up a subscription by name.
func (c *Configuration) Subscription(name string) (*Subscription, bool) {
	s, ok := c.Subscriptions[name]
	return s, ok
}

// Tenant looks up a tenant by name.
func (c *Configuration) Tenant(name string) (*Tenant, bool) {
	t, ok := c.Tenants[name]
	return t, ok
}

// Deployment looks up the deployment entry of a system/client/release tuple.
func (c *Configuration) Deployment(key DeploymentKey) (*Deployment, bool) {
	d, ok := c.Deployments[key]
	return d, ok
}

// Frame looks up a frame by name.
func (c *Configuration) Frame(name string) (*Frame, bool) {
	for _, f := range c.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// ParameterFile returns the pre-generated parameter file for key, if any.
func (c *Configuration) ParameterFile(key ParameterFileKey) (string, bool) {
	p, ok := c.ParameterFiles[key]
	return p, ok
}

// AddDeployment registers d under its key, preserving declaration order.
func (c *Configuration) AddDeployment(d *Deployment) {
	key := d.Key()
	if _, exists := c.Deployments[key]; !exists {
		c.DeploymentKeys = append(c.DeploymentKeys, key)
	}
	c.Deployments[key] = d
}
