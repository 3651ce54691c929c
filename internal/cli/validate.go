package cli

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

var validateAll bool

var validateCmd = &cobra.Command{
	Use:   "validate [flow...]",
	Short: "Lint flow definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !validateAll {
			return errors.New("name at least one flow or pass --all")
		}

		flows, err := definition.LoadDir(definitionsDir())
		if err != nil {
			return err
		}

		if !validateAll {
			flows, err = selectFlows(flows, args)
			if err != nil {
				return err
			}
		}

		registry := flowpipe.NewGroupRegistry()
		registerBuiltins(registry)
		valOpts := []definition.ValidateOption{
			definition.WithResolver(registry.Resolver()),
			definition.WithTransformNames(transformNames()...),
		}

		var (
			mu      sync.Mutex
			results []definition.ValidationResult
		)

		grp := errgroup.Group{}
		for _, flow := range flows {
			flow := flow
			grp.Go(func() error {
				result := definition.Validate(flow, valOpts...)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()

				return nil
			})
		}

		// Validation itself never errors; findings are collected per flow.
		_ = grp.Wait()

		failed := false
		for _, result := range results {
			printResult(cmd, result)
			if !result.IsValid() {
				failed = true
			}
		}

		if failed {
			return errors.New("validation reported errors")
		}

		return nil
	},
}

func selectFlows(flows []*definition.Flow, names []string) ([]*definition.Flow, error) {
	byName := make(map[string]*definition.Flow, len(flows))
	for _, flow := range flows {
		byName[flow.Name] = flow
	}

	selected := make([]*definition.Flow, 0, len(names))
	for _, name := range names {
		flow, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("no flow named %q in %s", name, definitionsDir())
		}

		selected = append(selected, flow)
	}

	return selected, nil
}

func printResult(cmd *cobra.Command, result definition.ValidationResult) {
	out := cmd.OutOrStdout()
	status := "ok"
	if !result.IsValid() {
		status = "invalid"
	}

	fmt.Fprintf(out, "%s: %s\n", result.Name(), status)
	for _, msg := range result.Errors() {
		fmt.Fprintf(out, "  error: %s\n", msg)
	}
	for _, msg := range result.Warnings() {
		fmt.Fprintf(out, "  warning: %s\n", msg)
	}
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "validate every definition in the directory")
	rootCmd.AddCommand(validateCmd)
}
