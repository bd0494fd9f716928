package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/plan"
)

func newInspectCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the nodes a BNDL file creates",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.CompileFile(cmd.Context(), args[0], true)
			if res.Err != nil {
				return res.Err
			}
			printNodeTable(cmd.OutOrStdout(), res.Plan)
			return nil
		},
	}
}

// printNodeTable lists every created node with the number of values, links
// and declared ports it has, followed by a summary line.
func printNodeTable(w io.Writer, p *plan.Plan) {
	values := make(map[nodeid.Address]int)
	links := make(map[nodeid.Address]int)
	ports := make(map[nodeid.Address]int)
	for _, op := range p.Ops {
		switch op.Kind {
		case plan.OpApplyValue:
			values[op.Apply.Node]++
		case plan.OpConnect:
			links[op.Connect.From]++
			links[op.Connect.To]++
		case plan.OpDeclarePort:
			ports[op.Port.Node]++
		}
	}

	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("Node", "Type", "Name", "Variant", "Label", "Group", "Values", "Links", "Ports")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt).WithWriter(w)
	for _, op := range p.Ops {
		if op.Kind != plan.OpCreateNode {
			continue
		}
		c := op.Create
		tbl.AddRow(c.Node.String(), c.TypeID, c.TypeName, c.Variant, c.Label, c.Group, values[c.Node], links[c.Node], ports[c.Node])
	}
	tbl.Print()

	s := p.Stats()
	fmt.Fprintf(w, "\n%d nodes, %d zones, %d links, %d values (%d user), %d interface ops\n",
		s.CreateNode, s.PairZone, s.Connect, s.ApplyValue, s.UserValues, s.Interface)
}
