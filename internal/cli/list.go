package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the flow definitions in the definitions directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		flows, err := definition.LoadDir(definitionsDir())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FLOW\tSTEPS\tGROUPS\tDESCRIPTION")
		for _, flow := range flows {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", flow.Name, len(flow.Steps), len(flow.Groups.Order), flow.Description)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
