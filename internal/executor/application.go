package executor

import (
	"context"
	"fmt"
	"maps"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/params"
	"github.com/specialistvlad/framedeploy/internal/status"
)

// runApplication runs the application's steps in declaration order and
// stops at the first failure. unit is already descended into the
// application.
func (e *Executor) runApplication(ctx context.Context, app *model.Application, unit deployctx.FlattenedDeployment, apps *status.Tracker) error {
	name := unit.Context.Iteration.String()
	ctx, logger := ctxlog.With(ctx, "application", app.Name)

	write(ctx, apps, name, status.State{Code: status.InProgress})

	for _, step := range app.Steps {
		if err := ctx.Err(); err != nil {
			write(ctx, apps, name, status.State{Code: status.Cancelled, Message: "cancelled before step " + step.Name})
			return err
		}

		if err := e.runStep(ctx, unit.WithStep(step.Name), step); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				write(ctx, apps, name, status.State{Code: status.Cancelled, Message: "cancelled during step " + step.Name})
				return ctxErr
			}
			logger.Error("Step failed.", "step", step.Name, "error", err)
			write(ctx, apps, name, status.State{Code: status.Failed, Message: fmt.Sprintf("step %s: %v", step.Name, err)})
			return nil
		}
	}

	write(ctx, apps, name, status.State{Code: status.Success})
	return nil
}

// runStep prepares and deploys one step. unit is already descended into the
// step.
func (e *Executor) runStep(ctx context.Context, unit deployctx.FlattenedDeployment, step *model.Step) error {
	ctx, logger := ctxlog.With(ctx, "step", step.Name)
	logger.Info("▶️ Running step.")

	region := unit.Data.Region(step.Region)
	if region == "" {
		return fmt.Errorf("location %s has no %s region", unit.Data.Location, step.Region)
	}

	prepared, err := e.preparer.Prepare(ctx, params.Request{Unit: unit, Step: step})
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	req := DeployRequest{
		ResourceGroup:  e.resourceGroup(unit, step),
		TemplatePath:   prepared.TemplatePath,
		ParametersPath: prepared.ParametersPath,
		Region:         region,
		Mode:           step.Mode,
		Subscription:   unit.Data.SubscriptionID,
		Name:           step.DeploymentName,
		Overrides:      maps.Clone(step.Overrides),
		Tags:           unit.Context.Tags(),
	}
	logger.Debug("Dispatching to backend.", "resource_group", req.ResourceGroup, "region", req.Region)

	if e.mode == ModeValidate {
		err = e.backend.Validate(ctx, req)
	} else {
		err = e.backend.Deploy(ctx, req)
	}
	if err != nil {
		return err
	}

	logger.Info("✅ Step finished.", "resource_group", req.ResourceGroup)
	return nil
}

func (e *Executor) resourceGroup(unit deployctx.FlattenedDeployment, step *model.Step) string {
	c := unit.Context
	name := ResourceGroupName(step.ResourceGroup, c.Application, c.Frame, c.Client)
	if e.mode == ModeValidate {
		return ValidationName(name, e.runID)
	}
	return name
}
