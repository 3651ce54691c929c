package export

import (
	"bytes"
	"fmt"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

func (e *exporter) markdown(flow *definition.Flow) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", flow.Name)
	if flow.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", flow.Description)
	}

	if len(flow.Groups.Order) > 0 {
		buf.WriteString("## Groups\n\n")
		buf.WriteString("| Group | Steps |\n|---|---|\n")
		for _, name := range flow.Groups.Order {
			fmt.Fprintf(&buf, "| %s | %d |\n", name, len(flow.Groups.Defs[name]))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Steps\n\n")
	buf.WriteString("| # | Kind | Step |\n|---|---|---|\n")
	for i, n := range flatten("s", flow.Steps) {
		fmt.Fprintf(&buf, "| %d | %s | %s |\n", i+1, n.Kind, n.Label)
	}

	return buf.Bytes(), nil
}
