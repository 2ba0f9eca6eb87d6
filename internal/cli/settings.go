package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/specialistvlad/framedeploy/internal/app"
	"github.com/specialistvlad/framedeploy/internal/azcli"
	"github.com/specialistvlad/framedeploy/internal/depmonitor"
	"github.com/specialistvlad/framedeploy/internal/status"
)

// EnvPrefix prefixes every environment variable, e.g.
// FRAMEDEPLOY_RELEASE_STATE or FRAMEDEPLOY_COMMIT_SHA.
const EnvPrefix = "FRAMEDEPLOY"

// Setting keys. They double as flag names and settings file keys.
const (
	keySettings          = "settings"
	keyConfig            = "config"
	keyReleaseState      = "release-state"
	keyCommitSHA         = "commit-sha"
	keyPipelineID        = "pipeline-id"
	keyReleaseID         = "release-id"
	keyLogLevel          = "log-level"
	keyLogFormat         = "log-format"
	keyHealthcheckPort   = "healthcheck-port"
	keyNoColor           = "no-color"
	keyPollInterval      = "poll-interval"
	keyMaxAttempts       = "max-attempts"
	keyDependencyTimeout = "dependency-timeout"
	keyReportInterval    = "report-interval"
	keyOutputDir         = "output-dir"
	keyAzBinary          = "az-binary"
)

// addPersistentFlags registers the settings shared by every command.
func addPersistentFlags(fs *pflag.FlagSet) {
	fs.String(keySettings, "", "settings file (yaml, toml or json) supplying defaults for these flags")
	fs.StringSliceP(keyConfig, "c", []string{"."}, "configuration file or directory; repeatable or comma-separated, also in FRAMEDEPLOY_CONFIG=a,b")
	fs.StringP(keyReleaseState, "r", "", "release state to deploy (required)")
	fs.String(keyCommitSHA, "", "commit sha stamped on deployed resources")
	fs.String(keyPipelineID, "", "pipeline id stamped on deployed resources")
	fs.String(keyReleaseID, "", "release id stamped on deployed resources")
	fs.String(keyLogLevel, "info", "logging level: debug, info, warn or error")
	fs.String(keyLogFormat, app.LogFormatText, "log output format: text or json")
	fs.Int(keyHealthcheckPort, 0, "port for the HTTP health check server; 0 disables it")
	fs.Bool(keyNoColor, false, "disable coloured status reports")
	fs.Duration(keyPollInterval, depmonitor.DefaultPollInterval, "interval between dependency registration checks")
	fs.Int(keyMaxAttempts, depmonitor.DefaultMaxAttempts, "dependency registration checks before a frame fails")
	fs.Duration(keyDependencyTimeout, depmonitor.DefaultTimeout, "maximum wait for dependency frames to finish")
	fs.Duration(keyReportInterval, status.DefaultReportInterval, "interval between status reports")
	fs.String(keyOutputDir, app.DefaultOutputDir, "directory for rendered parameter files")
	fs.String(keyAzBinary, azcli.DefaultBinary, "Azure CLI executable")
}

// newViper binds the command's flags, the environment and the optional
// settings file, in increasing order of precedence: settings file,
// environment, explicit flags.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString(keySettings); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("settings file %s not found", path)
			}
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}
	return v, nil
}

// loadConfig resolves the application configuration for cmd.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	return app.NewConfig(app.Config{
		ConfigPaths:       splitPaths(v.GetStringSlice(keyConfig)),
		ReleaseState:      v.GetString(keyReleaseState),
		CommitSHA:         v.GetString(keyCommitSHA),
		PipelineID:        v.GetString(keyPipelineID),
		ReleaseID:         v.GetString(keyReleaseID),
		LogLevel:          strings.ToLower(v.GetString(keyLogLevel)),
		LogFormat:         strings.ToLower(v.GetString(keyLogFormat)),
		HealthcheckPort:   v.GetInt(keyHealthcheckPort),
		NoColor:           v.GetBool(keyNoColor),
		PollInterval:      v.GetDuration(keyPollInterval),
		MaxAttempts:       v.GetInt(keyMaxAttempts),
		DependencyTimeout: v.GetDuration(keyDependencyTimeout),
		ReportInterval:    v.GetDuration(keyReportInterval),
		OutputDir:         v.GetString(keyOutputDir),
		AzBinary:          v.GetString(keyAzBinary),
	})
}

// splitPaths flattens comma-separated entries. Flags already split on
// commas, but environment values reach viper as one whitespace-split string.
func splitPaths(raw []string) []string {
	var paths []string
	for _, entry := range raw {
		for _, p := range strings.Split(entry, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}
