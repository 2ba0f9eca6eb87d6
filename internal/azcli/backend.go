// Package azcli deploys templates through the Azure CLI.
package azcli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/executor"
)

// DefaultBinary is the CLI looked up on PATH.
const DefaultBinary = "az"

// Backend implements executor.Backend.
type Backend struct {
	binary string
	runner Runner
}

var _ executor.Backend = (*Backend)(nil)

// New returns a Backend running binary through runner. Empty or nil
// arguments select the defaults.
func New(binary string, runner Runner) *Backend {
	if binary == "" {
		binary = DefaultBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Backend{binary: binary, runner: runner}
}

// Deploy creates the resource group if needed and deploys the template.
func (b *Backend) Deploy(ctx context.Context, req executor.DeployRequest) error {
	return b.run(ctx, "create", req)
}

// Validate creates the resource group if needed and validates the template
// against it without deploying.
func (b *Backend) Validate(ctx context.Context, req executor.DeployRequest) error {
	return b.run(ctx, "validate", req)
}

func (b *Backend) run(ctx context.Context, action string, req executor.DeployRequest) error {
	if err := check(req); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("resource_group", req.ResourceGroup, "action", action)

	if _, err := b.runner.Run(ctx, b.binary, groupArgs(req)); err != nil {
		return fmt.Errorf("create resource group %s: %w", req.ResourceGroup, err)
	}
	logger.Debug("Resource group ensured.")

	if _, err := b.runner.Run(ctx, b.binary, deploymentArgs(action, req)); err != nil {
		return fmt.Errorf("deployment %s in %s: %w", action, req.ResourceGroup, err)
	}
	logger.Debug("Deployment command finished.")
	return nil
}

func check(req executor.DeployRequest) error {
	var errs []error
	if req.ResourceGroup == "" {
		errs = append(errs, errors.New("resource group is required"))
	}
	if req.TemplatePath == "" {
		errs = append(errs, errors.New("template path is required"))
	}
	if req.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if req.Subscription == "" {
		errs = append(errs, errors.New("subscription is required"))
	}
	return errors.Join(errs...)
}

func groupArgs(req executor.DeployRequest) []string {
	args := []string{
		"group", "create",
		"--name", req.ResourceGroup,
		"--location", req.Region,
		"--subscription", req.Subscription,
		"--output", "none",
	}
	if len(req.Tags) > 0 {
		args = append(args, "--tags")
		args = append(args, pairs(req.Tags)...)
	}
	return args
}

func deploymentArgs(action string, req executor.DeployRequest) []string {
	args := []string{
		"deployment", "group", action,
		"--resource-group", req.ResourceGroup,
		"--template-file", req.TemplatePath,
		"--subscription", req.Subscription,
	}
	if req.Mode != "" {
		args = append(args, "--mode", req.Mode)
	}
	if req.Name != "" {
		args = append(args, "--name", req.Name)
	}
	if req.ParametersPath != "" {
		args = append(args, "--parameters", "@"+req.ParametersPath)
	}
	if len(req.Overrides) > 0 {
		args = append(args, "--parameters")
		args = append(args, pairs(req.Overrides)...)
	}
	return append(args, "--output", "none")
}

// pairs renders m as sorted key=value arguments.
func pairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+m[k])
	}
	return out
}
