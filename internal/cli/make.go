package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const definitionTemplate = `flow: %[1]s
description: Describe what %[1]s does

send: "hello"

steps:
  - identity
  - transform: uppercase
`

var makeCmd = &cobra.Command{
	Use:   "make <name>",
	Short: "Scaffold a new flow definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		dir := definitionsDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "unable to create definitions directory %s", dir)
		}

		path := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("definition %s already exists", path)
		}

		content := fmt.Sprintf(definitionTemplate, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "unable to write %s", path)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(makeCmd)
}
