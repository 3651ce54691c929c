package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Grazulex/flowpipe-go/pkg/definition/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <flow>",
	Short: "Render a flow definition as mermaid, markdown, json or dot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := findFlow(args[0])
		if err != nil {
			return err
		}

		rendered, err := export.Export(flow, exportFormat)
		if err != nil {
			return err
		}

		if exportOut == "" {
			fmt.Fprint(cmd.OutOrStdout(), string(rendered))

			return nil
		}

		if err := os.WriteFile(exportOut, rendered, 0o644); err != nil {
			return errors.Wrapf(err, "unable to write %s", exportOut)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatMermaid, "output format: mermaid, md, json or dot")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
