package cli

import (
	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/config"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP compile and export service",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.newApp(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("addr") {
					cfg.ServeAddr = addr
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address the HTTP server listens on.")
	return cmd
}
