package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
	"github.com/Grazulex/flowpipe-go/pkg/definition/export"
)

const exportYAML = `
flow: order_flow
description: Processes incoming orders.
groups:
  enrich:
    - lookup_customer
    - lookup_prices
steps:
  - validate_order
  - group: enrich
  - condition: { field: country, operator: equals, value: BE }
    then: [apply_be_vat]
    else: [apply_eu_vat]
  - transform: stringify
`

func exportFlow(t *testing.T) *definition.Flow {
	t.Helper()

	flow, err := definition.Load(strings.NewReader(exportYAML))
	require.NoError(t, err)

	return flow
}

func TestExportMermaid(t *testing.T) {
	t.Parallel()

	out, err := export.Export(exportFlow(t), export.FormatMermaid)
	require.NoError(t, err)

	rendered := string(out)
	assert.Contains(t, rendered, "title: order_flow")
	assert.Contains(t, rendered, "flowchart TD")
	assert.Contains(t, rendered, `s0["validate_order"]:::step`)
	assert.Contains(t, rendered, `s1["group: enrich"]:::group`)
	assert.Contains(t, rendered, `s2{"country equals BE"}:::condition`)
	assert.Contains(t, rendered, `s2_t0["apply_be_vat"]:::step`)
	assert.Contains(t, rendered, `s2_e0["apply_eu_vat"]:::step`)
	assert.Contains(t, rendered, "s0 --> s1")
	assert.Contains(t, rendered, "classDef condition fill:#e0a458,color:#fff")
}

func TestExportMermaidColorOverride(t *testing.T) {
	t.Parallel()

	out, err := export.Export(exportFlow(t), export.FormatMermaid,
		export.WithColor(definition.KindStep, "rgb(255,0,0)"))
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(string(out)), "classdef step fill:#ff0000,color:#fff")
}

func TestExportMermaidBadColor(t *testing.T) {
	t.Parallel()

	_, err := export.Export(exportFlow(t), export.FormatMermaid,
		export.WithColor(definition.KindStep, "not-a-colour"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse colour")
}

func TestExportMarkdown(t *testing.T) {
	t.Parallel()

	out, err := export.Export(exportFlow(t), export.FormatMarkdown)
	require.NoError(t, err)

	rendered := string(out)
	assert.Contains(t, rendered, "# order_flow")
	assert.Contains(t, rendered, "Processes incoming orders.")
	assert.Contains(t, rendered, "| enrich | 2 |")
	assert.Contains(t, rendered, "| 1 | step | validate_order |")
	assert.Contains(t, rendered, "transform: stringify")
}

func TestExportJSON(t *testing.T) {
	t.Parallel()

	out, err := export.Export(exportFlow(t), export.FormatJSON)
	require.NoError(t, err)

	var decoded struct {
		Flow   string `json:"flow"`
		Groups []struct {
			Name  string `json:"name"`
			Steps int    `json:"steps"`
		} `json:"groups"`
		Steps []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))

	assert.Equal(t, "order_flow", decoded.Flow)
	require.Len(t, decoded.Groups, 1)
	assert.Equal(t, "enrich", decoded.Groups[0].Name)
	assert.Equal(t, 2, decoded.Groups[0].Steps)
	require.NotEmpty(t, decoded.Steps)
	assert.Equal(t, "s0", decoded.Steps[0].ID)
	assert.Equal(t, "step", decoded.Steps[0].Kind)
}

func TestExportDOT(t *testing.T) {
	t.Parallel()

	out, err := export.Export(exportFlow(t), export.FormatDOT)
	require.NoError(t, err)

	rendered := string(out)
	assert.Contains(t, rendered, "strict digraph")
	assert.Contains(t, rendered, `label="order_flow"`)
	assert.Contains(t, rendered, `"s0" [ label="validate_order" ]`)
	assert.Contains(t, rendered, `"s0" -> "s1"`)
}

func TestExportUnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := export.Export(exportFlow(t), "svg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported export format "svg"`)
}
