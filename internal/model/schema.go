// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the HCL decoding schema for configuration files.
//
// Why a separate decoding schema?
//
// The HCL structs mirror the file layout (labels, nested blocks, optional
// attributes) while the model types mirror what the orchestration engine
// needs. Keeping them apart lets the file format evolve, e.g. by adding
// blocks the engine ignores, without touching the engine.
package model

import "github.com/hashicorp/hcl/v2"

// hclConfigFile represents the top-level structure of a configuration file.
type hclConfigFile struct {
	Tenants        []*hclTenant        `hcl:"tenant,block"`
	Subscriptions  []*hclSubscription  `hcl:"subscription,block"`
	Systems        []*hclNamed         `hcl:"system,block"`
	Clients        []*hclNamed         `hcl:"client,block"`
	ReleaseStates  []*hclNamed         `hcl:"release_state,block"`
	Deployments    []*hclDeployment    `hcl:"deployment,block"`
	Frames         []*hclFrame         `hcl:"frame,block"`
	Settings       []*hclSettings      `hcl:"settings,block"`
	ParameterFiles []*hclParameterFile `hcl:"parameter_file,block"`
}

// hclNamed is a block that only carries a name, e.g. `client "c1" {}`.
type hclNamed struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

type hclTenant struct {
	Name     string `hcl:"name,label"`
	TenantID string `hcl:"tenant_id"`
}

type hclSubscription struct {
	Name              string `hcl:"name,label"`
	SubscriptionID    string `hcl:"subscription_id"`
	Tenant            string `hcl:"tenant"`
	ServiceConnection string `hcl:"service_connection,optional"`
}

type hclDeployment struct {
	System       string       `hcl:"system,label"`
	Client       string       `hcl:"client,label"`
	ReleaseState string       `hcl:"release_state,label"`
	Targets      []*hclTarget `hcl:"target,block"`
}

type hclTarget struct {
	Subscription string         `hcl:"subscription,label"`
	Locations    []*hclLocation `hcl:"location,block"`
}

type hclLocation struct {
	Name      string `hcl:"name,label"`
	Primary   string `hcl:"primary"`
	Secondary string `hcl:"secondary,optional"`
}

type hclFrame struct {
	Name         string            `hcl:"name,label"`
	DependsOn    []string          `hcl:"depends_on,optional"`
	Applications []*hclApplication `hcl:"application,block"`
}

type hclApplication struct {
	Name  string     `hcl:"name,label"`
	Steps []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	Name           string            `hcl:"name,label"`
	Template       string            `hcl:"template"`
	Parameters     string            `hcl:"parameters,optional"`
	ResourceGroup  string            `hcl:"resource_group,optional"`
	Mode           string            `hcl:"mode,optional"`
	DeploymentName string            `hcl:"deployment_name,optional"`
	Region         string            `hcl:"region,optional"`
	Overrides      map[string]string `hcl:"overrides,optional"`
}

type hclSettings struct {
	StaticSecrets map[string]string `hcl:"static_secrets,optional"`
}

// hclParameterFile records a pre-generated parameter file, as written by
// the generate command.
type hclParameterFile struct {
	Frame        string `hcl:"frame,label"`
	Application  string `hcl:"application,label"`
	ReleaseState string `hcl:"release_state,label"`
	Subscription string `hcl:"subscription,label"`
	Step         string `hcl:"step,label"`
	Path         string `hcl:"path"`
}
