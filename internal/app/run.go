package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/depmonitor"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/output"
	"github.com/specialistvlad/framedeploy/internal/params"
	"github.com/specialistvlad/framedeploy/internal/status"
	"github.com/specialistvlad/framedeploy/internal/view"
)

// Run deploys or validates the configured release and returns its verdict.
// The health check server, when enabled, runs for the duration of the call.
func (a *App) Run(ctx context.Context, mode executor.Mode) (status.State, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", mode)

	monitor := &depmonitor.Monitor{
		PollInterval: a.config.PollInterval,
		MaxAttempts:  a.config.MaxAttempts,
		Timeout:      a.config.DependencyTimeout,
	}
	exec := executor.New(a.backend, params.NewPreparer(a.model, a.config.OutputDir),
		executor.WithMode(mode),
		executor.WithMonitor(monitor),
		executor.WithReporting(a.outW, a.config.ReportInterval, !a.config.NoColor && !color.NoColor),
		executor.WithSummary(a.outW),
		executor.OnStart(func(tr *status.Tracker) { a.runs.Store(tr) }),
	)
	a.runID = exec.RunID()

	if err := a.healthCheckServer(); err != nil {
		return status.State{}, err
	}
	defer func() { _ = a.closeHealthCheckServer() }()

	verdict, err := exec.Run(ctx, a.model, a.deploymentContext())
	if err != nil {
		return verdict, fmt.Errorf("%s run: %w", mode, err)
	}

	a.logger.Debug("App.Run method finished.", "status", verdict.Code)
	return verdict, nil
}

// Plan writes the units and frame waves the release would run, without
// touching the backend.
func (a *App) Plan(w io.Writer) error {
	rv, err := view.NewReleaseView(a.model, a.deploymentContext())
	if err != nil {
		return err
	}
	units, err := rv.Flatten()
	if err != nil {
		return err
	}

	unitTable := output.NewTable(w, "unit", "subscription", "tenant", "primary", "secondary")
	for _, u := range units {
		unitTable.AddRow(
			u.Context.Iteration.String(),
			u.Context.Subscription,
			u.Context.Tenant,
			u.Data.PrimaryRegion,
			u.Data.SecondaryRegion,
		)
	}
	if err := unitTable.Render(); err != nil {
		return err
	}

	graph, err := model.FrameGraph(a.model)
	if err != nil {
		return err
	}
	waves, err := graph.Levels()
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	frameTable := output.NewTable(w, "wave", "frame", "depends on", "required by", "applications", "steps")
	for i, wave := range waves {
		for _, name := range wave {
			deps, err := graph.Dependencies(name)
			if err != nil {
				return err
			}
			dependents, err := graph.Dependents(name)
			if err != nil {
				return err
			}
			apps, steps := 0, 0
			if f, ok := a.model.Frame(name); ok {
				apps = len(f.Applications)
				for _, app := range f.Applications {
					steps += len(app.Steps)
				}
			}
			frameTable.AddRow(
				fmt.Sprint(i+1),
				name,
				listOrDash(deps),
				listOrDash(dependents),
				fmt.Sprint(apps),
				fmt.Sprint(steps),
			)
		}
	}
	if err := frameTable.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d unit(s), %d frame(s) in %d wave(s)\n", len(units), len(a.model.Frames), len(waves))
	return nil
}

func listOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// Generate renders every parameter source of the release into the output
// directory and returns how many files were written.
func (a *App) Generate(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	generated, err := params.Generate(ctx, a.model, a.deploymentContext(), a.config.OutputDir)
	if err != nil {
		return 0, err
	}
	return len(generated), nil
}
