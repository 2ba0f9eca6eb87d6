package executor

import (
	"context"
	"errors"
	"strings"

	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/depmonitor"
	"github.com/specialistvlad/framedeploy/internal/iterctx"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/status"
	"golang.org/x/sync/errgroup"
)

// lastSegment labels a child entry by its own name within its parent.
func lastSegment(name string) string {
	if i := strings.LastIndex(name, iterctx.Separator); i >= 0 {
		return name[i+1:]
	}
	return name
}

// runFrame registers the frame in frames, waits for its dependencies and
// runs its applications concurrently. unit is already descended into the
// frame.
func (e *Executor) runFrame(ctx context.Context, frame *model.Frame, unit deployctx.FlattenedDeployment, frames *status.Tracker) error {
	name := unit.Context.Iteration.String()
	ctx, logger := ctxlog.With(ctx, "frame", frame.Name)

	frames.Initialize(ctx, name)

	apps := e.newTracker(name)
	for _, app := range frame.Applications {
		apps.Initialize(ctx, unit.Context.Iteration.Child(app.Name).String())
	}
	stop := startReporter(ctx, apps)
	defer stop()

	if err := e.monitor.Wait(ctx, unit.Context.Iteration, frame.DependsOn, frames); err != nil {
		var terr *depmonitor.TerminatedError
		switch {
		case errors.As(err, &terr):
			logger.Warn("Frame terminated before start.", "reason", terr.Reason, "dependencies", terr.Dependencies)
			e.skipApplications(ctx, apps, "frame "+frame.Name+" did not start: "+string(terr.Reason))
			return nil
		case ctx.Err() != nil:
			e.skipApplications(ctx, apps, "cancelled")
			return ctx.Err()
		default:
			logger.Error("Dependency wait failed.", "error", err)
			write(ctx, frames, name, status.State{Code: status.Failed, Message: err.Error()})
			e.skipApplications(ctx, apps, "frame "+frame.Name+" did not start")
			return nil
		}
	}

	logger.Info("▶️ Starting frame.", "applications", len(frame.Applications))
	write(ctx, frames, name, status.State{Code: status.InProgress})

	var g errgroup.Group
	for _, app := range frame.Applications {
		g.Go(func() error {
			return e.runApplication(ctx, app, unit.WithApplication(app.Name), apps)
		})
	}
	if err := g.Wait(); err != nil {
		write(ctx, frames, name, status.State{Code: status.Cancelled, Message: "cancelled"})
		return err
	}

	verdict := apps.AssessWith(lastSegment)
	write(ctx, frames, name, verdict)
	logger.Info("✅ Frame finished.", "status", verdict.Code)
	return nil
}

// skipApplications marks every application of a frame that will not run.
func (e *Executor) skipApplications(ctx context.Context, apps *status.Tracker, reason string) {
	for _, name := range apps.Names() {
		write(ctx, apps, name, status.State{Code: status.Cancelled, Message: reason})
	}
}
