package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/framedeploy/internal/azcli"
	"github.com/specialistvlad/framedeploy/internal/ctxlog"
	"github.com/specialistvlad/framedeploy/internal/deployctx"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/model"
	"github.com/specialistvlad/framedeploy/internal/status"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	model      *model.Configuration
	backend    executor.Backend
	httpServer *http.Server

	runID string
	runs  atomic.Pointer[status.Tracker]
}

// Option customizes an App.
type Option func(*options)

type options struct {
	logW    io.Writer
	backend executor.Backend
}

// WithLogWriter sends log output to w instead of the report writer.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logW = w }
}

// WithBackend replaces the Azure CLI backend.
func WithBackend(b executor.Backend) Option {
	return func(o *options) { o.backend = b }
}

// NewApp is the constructor for the main application. It builds an isolated
// logger and loads the configuration. Reports and tables go to outW.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	o := options{logW: outW}
	for _, opt := range opts {
		opt(&o)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, o.logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := model.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded.",
		"frames", len(cfgModel.Frames),
		"deployments", len(cfgModel.DeploymentKeys),
	)

	backend := o.backend
	if backend == nil {
		backend = azcli.New(cfg.AzBinary, nil)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		ctx:     ctx,
		config:  cfg,
		model:   cfgModel,
		backend: backend,
	}, nil
}

// Configuration returns the loaded configuration model.
func (a *App) Configuration() *model.Configuration {
	return a.model
}

// deploymentContext returns the release context built from the pipeline
// settings.
func (a *App) deploymentContext() deployctx.DeploymentContext {
	return deployctx.DeploymentContext{
		CommitSHA:    a.config.CommitSHA,
		PipelineID:   a.config.PipelineID,
		ReleaseID:    a.config.ReleaseID,
		ReleaseState: a.config.ReleaseState,
	}
}
