package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/builder"
	"github.com/vk/bndl/internal/config"
)

func newApplyCommand(g *globalFlags) *cobra.Command {
	var (
		builderName string
		url         string
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Compile a BNDL file and run its plan against a graph builder",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("builder") {
					cfg.Builder.Name = builderName
				}
				if cmd.Flags().Changed("url") {
					cfg.Builder.URL = url
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.CompileFile(cmd.Context(), args[0], true)
			if res.Err != nil {
				return res.Err
			}
			report, err := a.Apply(cmd.Context(), res.Plan, "")
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if failed := report.Failed(); len(failed) > 0 {
				return failuref("%d of %d operations failed", len(failed), len(report.Results))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&builderName, "builder", "memory", "Graph builder. One of: (memory | remote)")
	flags.StringVar(&url, "url", "", "Socket.IO endpoint of the remote builder.")
	return cmd
}

// printReport writes one line per operation.
func printReport(w io.Writer, r *builder.Report) {
	for _, res := range r.Results {
		if res.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), res.Op, res.Err)
			continue
		}
		fmt.Fprintf(w, "%s   %s (%s)\n", color.GreenString("ok"), res.Op, res.Duration)
	}
	fmt.Fprintf(w, "\n%d operations, %d failed\n", len(r.Results), len(r.Failed()))
}
