package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the cffauthor CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cffauthor",
		Short:   "Keep CITATION.cff authors in sync with pull request contributors",
		Version: a.version,
		Long: `cffauthor reconciles the contributors of a pull request against the
repository's CITATION.cff author list. It aggregates commits, reviews,
comments, and linked issues, enriches contributors with ORCID iDs, appends
the authors the file is missing, and posts a review comment summarizing
the result.

It is built to run inside a GitHub Action on pull_request events, reading
its inputs from the environment.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for debug log level)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for warn log level)")

	rootCmd.SetVersionTemplate("cffauthor {{.Version}}\n")

	rootCmd.AddCommand(a.NewUpdateCommand())
	rootCmd.AddCommand(a.NewValidateCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs to fold parsed flags back
// into the config and reinitialize the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	a.config.Verbose = mustGetBool(cmd, "verbose")
	a.config.Quiet = mustGetBool(cmd, "quiet")

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't
// exist. This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
