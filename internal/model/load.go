// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file turns one or more HCL files into a single Configuration.
//
// Why aggregate across files?
//
// Operators split large configurations by concern (tenancy in one file,
// frames in another, generated parameter manifests in a third). Loading
// merges every file found under the given paths into one Configuration and
// only then validates it, so references may cross file boundaries.
package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/fsutil"
)

const (
	// ConfigExtension is the file extension of configuration files.
	ConfigExtension = ".hcl"
	// ParametersExtension marks parameter sources. They share the HCL
	// syntax but are skipped when loading configuration.
	ParametersExtension = ".params.hcl"
)

// Load finds and parses every configuration file under paths and returns
// the validated Configuration. No partial configuration is ever returned.
func Load(ctx context.Context, paths ...string) (*Configuration, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, ConfigExtension)
		if err != nil {
			return nil, fmt.Errorf("failed to find configuration files in %s: %w", p, err)
		}
		for _, f := range found {
			if strings.HasSuffix(f, ParametersExtension) {
				continue
			}
			files = append(files, f)
		}
		logger.Debug("Discovered configuration files.", "path", p, "count", len(found))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s configuration files found in %v", ConfigExtension, paths)
	}

	parser := hclparse.NewParser()
	b := newBuilder()
	for _, file := range files {
		parsed, err := decodeFile(file, parser)
		if err != nil {
			return nil, err
		}
		b.add(file, parsed)
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := Validate(b.cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Configuration loaded.",
		"files", len(files),
		"clients", len(b.cfg.Clients),
		"systems", len(b.cfg.Systems),
		"frames", len(b.cfg.Frames),
	)
	return b.cfg, nil
}

// decodeFile parses a single HCL file into its decoding schema.
func decodeFile(filePath string, parser *hclparse.Parser) (*hclConfigFile, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclConfigFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}
	return &parsed, nil
}

// builder merges decoded files into one Configuration, collecting
// duplicate-definition errors instead of stopping at the first.
type builder struct {
	cfg  *Configuration
	errs []error
}

func newBuilder() *builder {
	return &builder{cfg: NewConfiguration()}
}

func (b *builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

func (b *builder) add(file string, f *hclConfigFile) {
	dir := filepath.Dir(file)

	for _, t := range f.Tenants {
		if _, dup := b.cfg.Tenants[t.Name]; dup {
			b.fail("%s: tenant %q declared more than once", file, t.Name)
			continue
		}
		b.cfg.Tenants[t.Name] = &Tenant{Name: t.Name, TenantID: t.TenantID}
	}

	for _, s := range f.Subscriptions {
		if _, dup := b.cfg.Subscriptions[s.Name]; dup {
			b.fail("%s: subscription %q declared more than once", file, s.Name)
			continue
		}
		b.cfg.Subscriptions[s.Name] = &Subscription{
			Name:              s.Name,
			SubscriptionID:    s.SubscriptionID,
			Tenant:            s.Tenant,
			ServiceConnection: s.ServiceConnection,
		}
	}

	b.cfg.Systems = b.addNames(file, "system", b.cfg.Systems, f.Systems)
	b.cfg.Clients = b.addNames(file, "client", b.cfg.Clients, f.Clients)
	b.cfg.ReleaseStates = b.addNames(file, "release_state", b.cfg.ReleaseStates, f.ReleaseStates)

	for _, d := range f.Deployments {
		dep := &Deployment{System: d.System, Client: d.Client, ReleaseState: d.ReleaseState}
		if _, dup := b.cfg.Deployments[dep.Key()]; dup {
			b.fail("%s: deployment %s/%s/%s declared more than once", file, d.System, d.Client, d.ReleaseState)
			continue
		}
		for _, t := range d.Targets {
			target := &Target{Subscription: t.Subscription}
			for _, l := range t.Locations {
				target.Locations = append(target.Locations, &Location{Name: l.Name, Primary: l.Primary, Secondary: l.Secondary})
			}
			dep.Targets = append(dep.Targets, target)
		}
		b.cfg.AddDeployment(dep)
	}

	for _, fr := range f.Frames {
		if _, dup := b.cfg.Frame(fr.Name); dup {
			b.fail("%s: frame %q declared more than once", file, fr.Name)
			continue
		}
		frame := &Frame{Name: fr.Name, DependsOn: fr.DependsOn}
		for _, a := range fr.Applications {
			app := &Application{Name: a.Name}
			for _, s := range a.Steps {
				app.Steps = append(app.Steps, translateStep(dir, s))
			}
			frame.Applications = append(frame.Applications, app)
		}
		b.cfg.Frames = append(b.cfg.Frames, frame)
	}

	for _, s := range f.Settings {
		for k, v := range s.StaticSecrets {
			b.cfg.StaticSecrets[k] = v
		}
	}

	for _, p := range f.ParameterFiles {
		key := ParameterFileKey{
			Frame:        p.Frame,
			Application:  p.Application,
			ReleaseState: p.ReleaseState,
			Subscription: p.Subscription,
			Step:         p.Step,
		}
		b.cfg.ParameterFiles[key] = resolvePath(dir, p.Path)
	}
}

func (b *builder) addNames(file, kind string, existing []string, blocks []*hclNamed) []string {
	for _, n := range blocks {
		dup := false
		for _, e := range existing {
			if e == n.Name {
				dup = true
				break
			}
		}
		if dup {
			b.fail("%s: %s %q declared more than once", file, kind, n.Name)
			continue
		}
		existing = append(existing, n.Name)
	}
	return existing
}

// translateStep applies defaults and resolves file references relative to
// the directory of the file that declared the step.
func translateStep(dir string, s *hclStep) *Step {
	step := &Step{
		Name:           s.Name,
		Template:       resolvePath(dir, s.Template),
		Parameters:     resolvePath(dir, s.Parameters),
		ResourceGroup:  s.ResourceGroup,
		Mode:           s.Mode,
		DeploymentName: s.DeploymentName,
		Region:         s.Region,
		Overrides:      s.Overrides,
	}
	if step.Mode == "" {
		step.Mode = ModeIncremental
	}
	if step.Region == "" {
		step.Region = RegionPrimary
	}
	return step
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
