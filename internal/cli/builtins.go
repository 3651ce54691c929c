package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
	"github.com/Grazulex/flowpipe-go/pkg/flowpipe"
)

// builtinTransforms are the named transforms available to definitions run
// through the CLI.
var builtinTransforms = map[string]definition.TransformFunc{
	"uppercase": func(ctx context.Context, payload any) (any, error) {
		return strings.ToUpper(fmt.Sprint(payload)), nil
	},
	"lowercase": func(ctx context.Context, payload any) (any, error) {
		return strings.ToLower(fmt.Sprint(payload)), nil
	},
	"trim": func(ctx context.Context, payload any) (any, error) {
		return strings.TrimSpace(fmt.Sprint(payload)), nil
	},
	"stringify": func(ctx context.Context, payload any) (any, error) {
		return fmt.Sprint(payload), nil
	},
}

// registerBuiltins populates the resolver's type table with generic steps a
// definition can reference by name.
func registerBuiltins(registry *flowpipe.GroupRegistry) {
	resolver := registry.Resolver()

	resolver.RegisterType("identity", func() any {
		return flowpipe.Identity()
	})

	for name, fn := range builtinTransforms {
		transform := fn
		resolver.RegisterType(name, func() any {
			return flowpipe.Transform(transform)
		})
	}
}

func transformNames() []string {
	names := make([]string, 0, len(builtinTransforms))
	for name := range builtinTransforms {
		names = append(names, name)
	}

	return names
}

func buildOptions(registry *flowpipe.GroupRegistry) []definition.BuildOption {
	opts := []definition.BuildOption{definition.WithRegistry(registry)}
	for name, fn := range builtinTransforms {
		opts = append(opts, definition.WithTransform(name, fn))
	}

	return opts
}
