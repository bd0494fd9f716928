package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks err as a usage or configuration problem.
func usageError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

func failuref(format string, a ...any) error {
	return &ExitError{Code: ExitFailure, Message: fmt.Sprintf(format, a...)}
}

// usageArgs reports positional argument mistakes as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

var errColor = color.New(color.FgRed)

// PrintError writes err to w in red when w is a terminal.
func PrintError(w io.Writer, err error) {
	errColor.Fprintln(w, err.Error())
}

// Execute runs the command line args. Command output goes to outW, logs and
// diagnostics go to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the bndl command tree.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "bndl",
		Short: "Parse, compile and serialize BNDL node graphs",
		Long: color.New(color.Bold).Sprint("Usage: bndl [global options] <command> [args]") + "\n\n" +
			"bndl reads node graphs written in the BNDL text format, compiles them\n" +
			"into ordered build plans, applies plans to a graph builder, and writes\n" +
			"graph snapshots back out as BNDL text.\n",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	g.register(cmd)

	cmd.AddCommand(
		newCheckCommand(g),
		newCompileCommand(g),
		newExportCommand(g),
		newInspectCommand(g),
		newApplyCommand(g),
		newServeCommand(g),
	)
	return cmd
}
