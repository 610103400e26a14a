package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuannvm/dynoteam/internal/input"
	"github.com/tuannvm/dynoteam/internal/runner"
	"github.com/tuannvm/dynoteam/internal/tui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check team files for errors",
	Long: `Check team files against the schema, then build each team to catch
unknown dependencies and cycles. A directory checks every team file in it.

Example:
  dynoteam validate
  dynoteam validate ./teams`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := runner.TeamFiles(teamPath(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, tui.Dim(input.Summarize(files)))
	failed := 0
	for _, f := range files {
		_, t, err := runner.ValidateFile(f)
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "%s %s: %v\n", tui.Mark(false), f, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %s: %s, %d agents, %d levels\n",
			tui.Mark(true), f, t.Name(), t.Len(), len(t.Plan()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d team files invalid", failed, len(files))
	}
	return nil
}
