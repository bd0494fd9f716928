package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/app"
)

func newCompileCommand(g *globalFlags) *cobra.Command {
	var (
		format  string
		out     string
		noCache bool
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile BNDL files into build plans",
		Long: "Compile each FILE into a build plan. With several files -o names a directory\n" +
			"that receives one plan per source. With --watch the files are compiled again\n" +
			"whenever they change, until the process is interrupted.",
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := planExtensions[format]; !ok {
				return usageError(fmt.Errorf("unknown format %q: must be 'json', 'hcl' or 'msgpack'", format))
			}
			a, err := g.newApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			outW, errW := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if watch {
				return a.Watch(cmd.Context(), args, !noCache, app.DefaultDebounce, func(results []app.CompileResult) {
					if _, err := emitPlans(outW, errW, results, format, out); err != nil {
						PrintError(errW, err)
					}
				})
			}

			files, err := app.ExpandPaths(args)
			if err != nil {
				return err
			}
			results, err := a.CompileFiles(cmd.Context(), files, !noCache)
			if err != nil {
				return err
			}
			failed, err := emitPlans(outW, errW, results, format, out)
			if err != nil {
				return err
			}
			if failed > 0 {
				return failuref("%d of %d files failed to compile", failed, len(results))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "json", "Plan format. One of: (json | hcl | msgpack)")
	flags.StringVarP(&out, "output", "o", "", "Output file, or directory when compiling several files. Defaults to stdout.")
	flags.BoolVar(&noCache, "no-cache", false, "Compile without consulting the plan cache.")
	flags.BoolVar(&watch, "watch", false, "Recompile when the sources change.")
	return cmd
}
