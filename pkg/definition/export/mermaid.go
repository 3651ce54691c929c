package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	colors "gopkg.in/go-playground/colors.v1"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

// defaultPalette maps step kinds to their flowchart node colour.
var defaultPalette = map[string]string{
	definition.KindStep:      "#4f86c6",
	definition.KindGroup:     "#6fb971",
	definition.KindNested:    "#8e7cc3",
	definition.KindCondition: "#e0a458",
	definition.KindTransform: "#5bc0be",
	definition.KindRetry:     "#c65b7c",
	definition.KindRateLimit: "#c65b7c",
	definition.KindCache:     "#b5a642",
	definition.KindBatch:     "#4fb0c6",
}

// palette resolves the colour for a kind, normalising overrides through the
// colour parser so "rgb(255,0,0)" and "#F00" both come out as plain hex.
func (e *exporter) palette(kind string) (string, error) {
	raw, ok := e.overrides[kind]
	if !ok {
		raw = defaultPalette[kind]
	}

	parsed, err := colors.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "unable to parse colour %q for kind %q", raw, kind)
	}

	return parsed.ToHEX().String(), nil
}

func (e *exporter) mermaid(flow *definition.Flow) ([]byte, error) {
	nodes := flatten("s", flow.Steps)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "---\ntitle: %s\n---\n", flow.Name)
	buf.WriteString("flowchart TD\n")

	kinds := make(map[string]struct{})
	for _, n := range nodes {
		shape := "[%q]"
		if n.Kind == definition.KindCondition {
			shape = "{%q}"
		}

		fmt.Fprintf(&buf, "    %s"+shape+":::%s\n", n.ID, n.Label, n.Kind)
		kinds[n.Kind] = struct{}{}
	}

	for i := 0; i+1 < len(nodes); i++ {
		fmt.Fprintf(&buf, "    %s --> %s\n", nodes[i].ID, nodes[i+1].ID)
	}

	sorted := make([]string, 0, len(kinds))
	for kind := range kinds {
		sorted = append(sorted, kind)
	}
	sort.Strings(sorted)

	for _, kind := range sorted {
		color, err := e.palette(kind)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&buf, "    classDef %s fill:%s,color:#fff\n", kind, color)
	}

	return buf.Bytes(), nil
}
