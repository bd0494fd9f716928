package cli

import (
	"github.com/spf13/cobra"
)

func newExportCommand(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export SNAPSHOT",
		Short: "Serialize a YAML graph snapshot into BNDL text",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := a.ExportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, text)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file. Defaults to stdout.")
	return cmd
}
