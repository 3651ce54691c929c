// Package export renders flow definitions into human and machine readable
// formats: mermaid flowcharts, markdown summaries, JSON and graphviz DOT.
package export

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

// Supported formats.
const (
	FormatMermaid  = "mermaid"
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatDOT      = "dot"
)

// Option configures an export.
type Option func(*exporter)

// WithColor overrides the mermaid palette colour for a step kind. Any value
// colors.Parse understands is accepted and normalised to hex.
func WithColor(kind, color string) Option {
	return func(e *exporter) {
		e.overrides[kind] = color
	}
}

type exporter struct {
	overrides map[string]string
}

// Export renders flow in the given format.
func Export(flow *definition.Flow, format string, opts ...Option) ([]byte, error) {
	e := &exporter{overrides: make(map[string]string)}
	for _, opt := range opts {
		opt(e)
	}

	switch format {
	case FormatMermaid:
		return e.mermaid(flow)
	case FormatMarkdown:
		return e.markdown(flow)
	case FormatJSON:
		return e.json(flow)
	case FormatDOT:
		return e.dot(flow)
	default:
		return nil, errors.Errorf("unsupported export format %q", format)
	}
}

// node is one rendered step of the flow, flattened for export.
type node struct {
	ID    string
	Label string
	Kind  string
}

// flatten walks the definition depth-first and returns the nodes in
// execution order. Branch steps contribute one node for the condition plus
// the nodes of both branches.
func flatten(prefix string, defs []definition.StepDef) []node {
	var nodes []node
	for i, def := range defs {
		id := fmt.Sprintf("%s%d", prefix, i)
		kind, err := def.Kind()
		if err != nil {
			nodes = append(nodes, node{ID: id, Label: "invalid", Kind: "invalid"})

			continue
		}

		switch kind {
		case definition.KindStep:
			nodes = append(nodes, node{ID: id, Label: def.Step, Kind: kind})
		case definition.KindGroup:
			nodes = append(nodes, node{ID: id, Label: "group: " + def.Group, Kind: kind})
		case definition.KindNested:
			nodes = append(nodes, node{ID: id, Label: "nested", Kind: kind})
			nodes = append(nodes, flatten(id+"_", def.Nested)...)
		case definition.KindCondition:
			label := fmt.Sprintf("%s %s %v", def.Condition.Field, def.Condition.Operator, def.Condition.Value)
			nodes = append(nodes, node{ID: id, Label: label, Kind: kind})
			nodes = append(nodes, flatten(id+"_t", def.Then)...)
			nodes = append(nodes, flatten(id+"_e", def.Else)...)
		case definition.KindTransform:
			nodes = append(nodes, node{ID: id, Label: "transform: " + def.Transform, Kind: kind})
		case definition.KindRetry:
			nodes = append(nodes, node{ID: id, Label: fmt.Sprintf("retry ×%d", def.Retry.MaxAttempts), Kind: kind})
		case definition.KindRateLimit:
			nodes = append(nodes, node{ID: id, Label: fmt.Sprintf("rate limit %.0f/s", def.RateLimit.PerSecond), Kind: kind})
		case definition.KindCache:
			nodes = append(nodes, node{ID: id, Label: "cache " + def.Cache.TTL.Duration().String(), Kind: kind})
		case definition.KindBatch:
			nodes = append(nodes, node{ID: id, Label: fmt.Sprintf("batch ×%d", def.Batch.Size), Kind: kind})
		}
	}

	return nodes
}
