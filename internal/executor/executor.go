package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/depmonitor"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/params"
	"github.com/specialistvlad/framedeploy/internal/status"
	"github.com/specialistvlad/framedeploy/internal/view"
	"golang.org/x/sync/errgroup"
)

// Mode selects whether steps are deployed or only validated.
type Mode string

const (
	ModeDeploy   Mode = "deploy"
	ModeValidate Mode = "validate"
)

// DeployRequest is one template deployment against one resource group.
type DeployRequest struct {
	ResourceGroup  string
	TemplatePath   string
	ParametersPath string
	Region         string
	Mode           string
	Subscription   string
	Name           string
	Overrides      map[string]string
	Tags           map[string]string
}

// Backend performs deployments. Both calls create the resource group when
// it does not exist yet.
type Backend interface {
	Deploy(ctx context.Context, req DeployRequest) error
	Validate(ctx context.Context, req DeployRequest) error
}

// Preparer resolves the files a step deploys.
type Preparer interface {
	Prepare(ctx context.Context, req params.Request) (params.Prepared, error)
}

// Executor runs releases. It holds no per-run state and may run several
// releases concurrently.
type Executor struct {
	backend  Backend
	preparer Preparer
	monitor  *depmonitor.Monitor
	mode     Mode
	runID    string

	reportInterval time.Duration
	reportOutput   io.Writer
	colors         bool
	summary        io.Writer
	onStart        func(*status.Tracker)
}

// Option configures an Executor.
type Option func(*Executor)

// WithMode sets deploy or validate mode.
func WithMode(m Mode) Option {
	return func(e *Executor) { e.mode = m }
}

// WithMonitor sets the dependency wait budgets.
func WithMonitor(m *depmonitor.Monitor) Option {
	return func(e *Executor) { e.monitor = m }
}

// WithRunID fixes the run identifier used for validation suffixes.
func WithRunID(id string) Option {
	return func(e *Executor) { e.runID = id }
}

// WithReporting configures the periodic status reporters.
func WithReporting(w io.Writer, interval time.Duration, colors bool) Option {
	return func(e *Executor) {
		e.reportOutput = w
		e.reportInterval = interval
		e.colors = colors
	}
}

// WithSummary renders a per-unit result table to w after each run.
func WithSummary(w io.Writer) Option {
	return func(e *Executor) { e.summary = w }
}

// OnStart registers a hook receiving the run-level tracker once every unit
// is registered.
func OnStart(fn func(*status.Tracker)) Option {
	return func(e *Executor) { e.onStart = fn }
}

// New creates an Executor.
func New(backend Backend, preparer Preparer, opts ...Option) *Executor {
	e := &Executor{
		backend:        backend,
		preparer:       preparer,
		monitor:        depmonitor.New(),
		mode:           ModeDeploy,
		runID:          uuid.NewString(),
		reportInterval: status.DefaultReportInterval,
		reportOutput:   os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reportOutput = &lockedWriter{w: e.reportOutput}
	return e
}

// lockedWriter serializes the reporters of every tracker of a run onto one
// writer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// RunID returns the identifier of this executor's runs.
func (e *Executor) RunID() string {
	return e.runID
}

func (e *Executor) newTracker(scope string) *status.Tracker {
	return status.New(scope,
		status.WithOutput(e.reportOutput),
		status.WithReportInterval(e.reportInterval),
		status.WithColors(e.colors),
	)
}

// startReporter runs the tracker's reporter until stop is called.
func startReporter(ctx context.Context, tr *status.Tracker) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := tr.StartMonitor(ctx)
	return func() {
		cancel()
		<-done
	}
}

// write records a state on an entry registered by the caller. The entry
// always exists, so a failure is only logged.
func write(ctx context.Context, tr *status.Tracker, name string, s status.State) {
	if err := tr.Write(ctx, name, s.Code, s.Message); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to write status.", "name", name, "error", err)
	}
}

// Run deploys every unit of the release selected by dctx and returns the
// folded verdict. An error is returned for configuration errors, which
// abort the run before any work starts, and for cancellation of ctx.
func (e *Executor) Run(ctx context.Context, cfg *model.Configuration, dctx deployctx.DeploymentContext) (status.State, error) {
	ctx, logger := ctxlog.With(ctx, "release_state", dctx.ReleaseState, "mode", e.mode)

	rv, err := view.NewReleaseView(cfg, dctx)
	if err != nil {
		return status.State{}, err
	}
	units, err := rv.Flatten()
	if err != nil {
		return status.State{}, err
	}

	logger.Info("▶️ Starting release run.", "units", len(units), "run_id", e.runID)

	runs := e.newTracker("run")
	for _, unit := range units {
		runs.Initialize(ctx, unit.Context.Iteration.String())
	}
	if e.onStart != nil {
		e.onStart(runs)
	}
	stop := startReporter(ctx, runs)

	var g errgroup.Group
	for _, unit := range units {
		unit := unit.Clone()
		g.Go(func() error {
			return e.runUnit(ctx, cfg, unit, runs)
		})
	}
	err = g.Wait()
	stop()

	if e.summary != nil {
		if serr := writeSummary(e.summary, runs.Snapshot()); serr != nil {
			logger.Warn("Failed to render run summary.", "error", serr)
		}
	}

	if err != nil {
		logger.Warn("Release run cancelled.", "error", err)
		return status.State{Code: status.Cancelled, Message: fmt.Sprintf("run cancelled: %v", err)}, err
	}

	verdict := runs.Assess()
	logger.Info("🏁 Release run finished.", "status", verdict.Code)
	return verdict, nil
}

// runUnit runs every frame of one unit concurrently and records the folded
// verdict under the unit's name in runs.
func (e *Executor) runUnit(ctx context.Context, cfg *model.Configuration, unit deployctx.FlattenedDeployment, runs *status.Tracker) error {
	name := unit.Context.Iteration.String()
	ctx, logger := ctxlog.With(ctx, "unit", name)
	logger.Info("▶️ Deploying unit.", "location", unit.Data.Location)

	write(ctx, runs, name, status.State{Code: status.InProgress})

	frames := e.newTracker(name)
	stop := startReporter(ctx, frames)

	var g errgroup.Group
	for _, frame := range cfg.Frames {
		g.Go(func() error {
			return e.runFrame(ctx, frame, unit.WithFrame(frame.Name), frames)
		})
	}
	err := g.Wait()
	stop()

	if err != nil {
		write(ctx, runs, name, status.State{Code: status.Cancelled, Message: name + " cancelled"})
		return err
	}

	verdict := frames.AssessWith(lastSegment)
	write(ctx, runs, name, verdict)
	logger.Info("✅ Unit finished.", "status", verdict.Code)
	return nil
}
