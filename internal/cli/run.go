package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe/tracing"
)

var (
	runPayload string
	runTrace   bool
)

var runCmd = &cobra.Command{
	Use:   "run <flow>",
	Short: "Build a flow definition and execute it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := findFlow(args[0])
		if err != nil {
			return err
		}

		registry := flowpipe.NewGroupRegistry()
		registerBuiltins(registry)

		opts := buildOptions(registry)
		if runTrace {
			logger, logErr := newLogger()
			if logErr != nil {
				return logErr
			}
			defer func() { _ = logger.Sync() }()

			opts = append(opts, definition.WithTracer(tracing.NewLogging(logger)))
		}

		pipe, err := definition.Build(flow, opts...)
		if err != nil {
			return err
		}

		if runPayload != "" {
			var payload any
			if err := json.Unmarshal([]byte(runPayload), &payload); err != nil {
				return errors.Wrap(err, "unable to parse --payload as JSON")
			}
			pipe.Send(payload)
		}

		result, err := pipe.ThenReturn(cmd.Context())
		if err != nil {
			return errors.Wrapf(err, "flow %q failed", flow.Name)
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			// Not every payload is JSON-encodable; fall back to plain print.
			fmt.Fprintln(cmd.OutOrStdout(), result)

			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

		return nil
	},
}

func findFlow(name string) (*definition.Flow, error) {
	flows, err := definition.LoadDir(definitionsDir())
	if err != nil {
		return nil, err
	}

	for _, flow := range flows {
		if flow.Name == name {
			return flow, nil
		}
	}

	return nil, errors.Errorf("no flow named %q in %s", name, definitionsDir())
}

func init() {
	runCmd.Flags().StringVar(&runPayload, "payload", "", "initial payload as JSON, overrides the definition's send value")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "log every step execution")
	rootCmd.AddCommand(runCmd)
}
