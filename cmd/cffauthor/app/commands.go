package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/cffauthor/pkg/cff"
)

// NewUpdateCommand creates the update command, the Action's entry point.
func (a *App) NewUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Reconcile pull request contributors against the CFF author list",
		Long: `Update aggregates the contributors of the pull request in the current
GitHub Actions event, appends the authors missing from the citation file,
posts a review comment, and writes the workflow outputs.

The command exits non-zero when a configured invalidation policy fires:
missing authors, duplicate authors, or an invalid citation file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUpdate(cmd.Context())
		},
	}
}

// NewValidateCommand creates the validate command.
func (a *App) NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a CFF file against the schema",
		Long:  `Validate runs cffconvert against the citation file and reports the result.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.config.CFFPath
			if len(args) == 1 {
				path = args[0]
			}
			validator := cff.NewConvertValidator(a.config.ValidatorCommand)
			if err := validator.Validate(cmd.Context(), path); err != nil {
				return err
			}
			cmd.Printf("%s is valid CFF\n", path)
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("cffauthor %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
