package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/framedeploy/internal/app"
	"github.com/specialistvlad/framedeploy/internal/executor"
	"github.com/specialistvlad/framedeploy/internal/status"
)

// Execute runs the command tree against args and returns an error carrying
// the process exit code (see ExitCode).
func Execute(ctx context.Context, args []string, out, errOut io.Writer, opts ...app.Option) error {
	root := NewRootCommand(opts...)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return usageError(err)
	}
	return err
}

// NewRootCommand builds the framedeploy command tree. opts are applied to
// every App the commands create.
func NewRootCommand(opts ...app.Option) *cobra.Command {
	root := &cobra.Command{
		Use:   "framedeploy",
		Short: "Frame-based multi-region deployment orchestrator",
		Long: `framedeploy deploys ARM templates across the hierarchy
system → client → release state → subscription → location → frame → application → step.

Frames run concurrently and wait for the frames they depend on; applications
within a frame run concurrently; steps within an application run in order.

Example usage:
  framedeploy plan -c config/ -r prod          # Show what a release would deploy
  framedeploy validate -c config/ -r prod      # Validate every step without deploying
  framedeploy deploy -c config/ -r prod        # Deploy the release
  framedeploy generate -c config/ -r prod      # Render parameter files only

Every flag can also be set through FRAMEDEPLOY_<FLAG> environment variables,
e.g. FRAMEDEPLOY_COMMIT_SHA, or a --settings file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	addPersistentFlags(root.PersistentFlags())

	root.AddCommand(
		newReleaseCommand(executor.ModeDeploy, "Deploy every unit of a release", opts),
		newReleaseCommand(executor.ModeValidate, "Validate every step of a release against throwaway resource groups", opts),
		newPlanCommand(opts),
		newGenerateCommand(opts),
	)
	return root
}

// newApp resolves settings for cmd and builds the App. Logs go to the
// command's error stream unless opts say otherwise.
func newApp(cmd *cobra.Command, opts []app.Option) (*app.App, *app.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, usageError(err)
	}

	all := append([]app.Option{app.WithLogWriter(cmd.ErrOrStderr())}, opts...)
	a, err := app.NewApp(cmd.OutOrStdout(), cfg, all...)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitFailed, Message: err.Error()}
	}
	return a, cfg, nil
}

func newReleaseCommand(mode executor.Mode, short string, opts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			verdict, err := a.Run(cmd.Context(), mode)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return &ExitError{Code: ExitCancelled, Message: err.Error()}
				}
				return &ExitError{Code: ExitFailed, Message: err.Error()}
			}

			printVerdict(cmd.OutOrStdout(), cfg.NoColor, string(mode), verdict)
			return verdictError(string(mode), verdict)
		},
	}
}

func newPlanCommand(opts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the units and frame waves a release would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if err := a.Plan(cmd.OutOrStdout()); err != nil {
				return &ExitError{Code: ExitFailed, Message: err.Error()}
			}
			return nil
		},
	}
}

func newGenerateCommand(opts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Render the parameter files of a release and write a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			n, err := a.Generate(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitFailed, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d parameter file(s) in %s\n", n, cfg.OutputDir)
			return nil
		},
	}
}

func printVerdict(w io.Writer, noColor bool, command string, verdict status.State) {
	c := color.New(color.FgGreen, color.Bold)
	symbol := "✅"
	if verdict.Code != status.Success {
		c = color.New(color.FgRed, color.Bold)
		symbol = "❌"
	}
	if noColor {
		c.DisableColor()
	}
	c.Fprintf(w, "%s %s %s\n", symbol, command, verdict.Code)
}
