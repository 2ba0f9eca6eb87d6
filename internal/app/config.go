package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/framedeploy/internal/depmonitor"
	"github.com/specialistvlad/framedeploy/internal/status"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"

	DefaultOutputDir = ".framedeploy"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories

	ReleaseState string
	CommitSHA    string
	PipelineID   string
	ReleaseID    string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	NoColor         bool

	PollInterval      time.Duration
	MaxAttempts       int
	DependencyTimeout time.Duration
	ReportInterval    time.Duration

	OutputDir string
	AzBinary  string
}

// NewConfig applies defaults and validates cfg. Every problem is reported,
// not only the first.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatText
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = depmonitor.DefaultPollInterval
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = depmonitor.DefaultMaxAttempts
	}
	if cfg.DependencyTimeout == 0 {
		cfg.DependencyTimeout = depmonitor.DefaultTimeout
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = status.DefaultReportInterval
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	var errs []error
	if len(cfg.ConfigPaths) == 0 {
		errs = append(errs, errors.New("at least one configuration path is required"))
	}
	if cfg.ReleaseState == "" {
		errs = append(errs, errors.New("release state is required"))
	}
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat))
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort))
	}
	if cfg.PollInterval < 0 || cfg.DependencyTimeout < 0 || cfg.ReportInterval < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if cfg.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("invalid max attempts %d", cfg.MaxAttempts))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &cfg, nil
}
