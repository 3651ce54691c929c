package export

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

// jsonFlow is the stable machine-readable form of a definition. Field order
// and names are part of the format; renaming them breaks consumers.
type jsonFlow struct {
	Flow        string      `json:"flow"`
	Description string      `json:"description,omitempty"`
	Groups      []jsonGroup `json:"groups,omitempty"`
	Steps       []jsonNode  `json:"steps"`
}

type jsonGroup struct {
	Name  string `json:"name"`
	Steps int    `json:"steps"`
}

type jsonNode struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

func (e *exporter) json(flow *definition.Flow) ([]byte, error) {
	out := jsonFlow{
		Flow:        flow.Name,
		Description: flow.Description,
	}

	for _, name := range flow.Groups.Order {
		out.Groups = append(out.Groups, jsonGroup{Name: name, Steps: len(flow.Groups.Defs[name])})
	}

	for _, n := range flatten("s", flow.Steps) {
		out.Steps = append(out.Steps, jsonNode{ID: n.ID, Kind: n.Kind, Label: n.Label})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal flow")
	}

	return data, nil
}
