// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file holds the structural validation of a Configuration.
//
// Every problem is collected and returned at once so an operator can fix a
// configuration in one pass. Validation runs before any orchestration work
// starts; the engine assumes a Configuration that passed it.
package model

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/specialistvlad/framedeploy/internal/dag"
)

// identifierRegex constrains every user-chosen name to lowercase identifiers.
var identifierRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the structural integrity of cfg.
func Validate(cfg *Configuration) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	checkName := func(kind, name string) {
		if !identifierRegex.MatchString(name) {
			fail("%s name %q must be a lowercase identifier", kind, name)
		}
	}

	for _, n := range cfg.Systems {
		checkName("system", n)
	}
	for _, n := range cfg.Clients {
		checkName("client", n)
	}
	for _, n := range cfg.ReleaseStates {
		checkName("release_state", n)
	}
	for name, t := range cfg.Tenants {
		checkName("tenant", name)
		if t.TenantID == "" {
			fail("tenant %q has an empty tenant_id", name)
		}
	}
	for name, s := range cfg.Subscriptions {
		checkName("subscription", name)
		if s.SubscriptionID == "" {
			fail("subscription %q has an empty subscription_id", name)
		}
		if _, ok := cfg.Tenants[s.Tenant]; !ok {
			fail("subscription %q references unknown tenant %q", name, s.Tenant)
		}
	}

	for _, key := range cfg.DeploymentKeys {
		d := cfg.Deployments[key]
		where := fmt.Sprintf("deployment %s/%s/%s", d.System, d.Client, d.ReleaseState)
		if !cfg.HasSystem(d.System) {
			fail("%s references unknown system %q", where, d.System)
		}
		if !cfg.HasClient(d.Client) {
			fail("%s references unknown client %q", where, d.Client)
		}
		if !cfg.HasReleaseState(d.ReleaseState) {
			fail("%s references unknown release state %q", where, d.ReleaseState)
		}
		targets := make(map[string]bool)
		for _, t := range d.Targets {
			if targets[t.Subscription] {
				fail("%s targets subscription %q more than once", where, t.Subscription)
			}
			targets[t.Subscription] = true
			if _, ok := cfg.Subscriptions[t.Subscription]; !ok {
				fail("%s targets unknown subscription %q", where, t.Subscription)
			}
			if len(t.Locations) == 0 {
				fail("%s target %q declares no locations", where, t.Subscription)
			}
			locations := make(map[string]bool)
			for _, l := range t.Locations {
				checkName("location", l.Name)
				if locations[l.Name] {
					fail("%s target %q declares location %q more than once", where, t.Subscription, l.Name)
				}
				locations[l.Name] = true
				if l.Primary == "" {
					fail("%s location %q has an empty primary region", where, l.Name)
				}
			}
		}
	}

	errs = append(errs, validateFrames(cfg)...)
	return errors.Join(errs...)
}

// validateFrames checks names, steps and the frame dependency graph.
func validateFrames(cfg *Configuration) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	g := dag.New()
	for _, f := range cfg.Frames {
		if !identifierRegex.MatchString(f.Name) {
			fail("frame name %q must be a lowercase identifier", f.Name)
		}
		g.AddNode(f.Name)

		apps := make(map[string]bool)
		for _, a := range f.Applications {
			if apps[a.Name] {
				fail("frame %q declares application %q more than once", f.Name, a.Name)
			}
			apps[a.Name] = true
			if !identifierRegex.MatchString(a.Name) {
				fail("application name %q in frame %q must be a lowercase identifier", a.Name, f.Name)
			}

			steps := make(map[string]bool)
			for _, s := range a.Steps {
				where := fmt.Sprintf("step %s/%s/%s", f.Name, a.Name, s.Name)
				if steps[s.Name] {
					fail("%s declared more than once", where)
				}
				steps[s.Name] = true
				if !identifierRegex.MatchString(s.Name) {
					fail("%s: name must be a lowercase identifier", where)
				}
				if s.Template == "" {
					fail("%s has no template", where)
				}
				if s.Mode != ModeIncremental && s.Mode != ModeComplete {
					fail("%s has invalid mode %q (want %s or %s)", where, s.Mode, ModeIncremental, ModeComplete)
				}
				if s.Region != RegionPrimary && s.Region != RegionSecondary {
					fail("%s has invalid region %q (want %s or %s)", where, s.Region, RegionPrimary, RegionSecondary)
				}
			}
		}
	}

	for _, f := range cfg.Frames {
		for _, dep := range f.DependsOn {
			if _, ok := cfg.Frame(dep); !ok {
				fail("frame %q depends on unknown frame %q", f.Name, dep)
				continue
			}
			if err := g.AddEdge(dep, f.Name); err != nil {
				fail("frame %q: %v", f.Name, err)
			}
		}
	}
	if err := g.DetectCycles(); err != nil {
		fail("frame dependencies: %v", err)
	}
	return errs
}

// FrameGraph returns the frame dependency graph of a validated configuration.
func FrameGraph(cfg *Configuration) (*dag.Graph, error) {
	g := dag.New()
	for _, f := range cfg.Frames {
		g.AddNode(f.Name)
	}
	for _, f := range cfg.Frames {
		for _, dep := range f.DependsOn {
			if err := g.AddEdge(dep, f.Name); err != nil {
				return nil, fmt.Errorf("frame %q: %w", f.Name, err)
			}
		}
	}
	return g, nil
}
