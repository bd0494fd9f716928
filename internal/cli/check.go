package cli

import (
	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/app"
)

func newCheckCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse and compile BNDL files, reporting errors only",
		Long: "Parse and compile each FILE. Directories are searched for " + app.SourceExt + " files.\n" +
			"Nothing is written except one status line per file.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := app.ExpandPaths(args)
			if err != nil {
				return err
			}
			a, err := g.newApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.CompileFiles(cmd.Context(), files, true)
			if err != nil {
				return err
			}
			if failed := reportCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), results); failed > 0 {
				return failuref("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
}
