package export

import (
	"bytes"
	"sort"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/Grazulex/flowpipe-go/pkg/definition"
)

const dotTemplate = `strict digraph {
	label="{{.Label}}";
	{{range $s := .Statements}}
	"{{.Source}}" {{if .Target}}-> "{{.Target}}"{{else}}[ label="{{.Attr}}" ]{{end}};
	{{end}}
}
`

type dotDescription struct {
	Label      string
	Statements []dotStatement
}

type dotStatement struct {
	Source string
	Target string
	Attr   string
}

func (e *exporter) dot(flow *definition.Flow) ([]byte, error) {
	nodes := flatten("s", flow.Steps)

	g := graph.New(graph.StringHash, graph.Directed())
	for _, n := range nodes {
		err := g.AddVertex(n.ID, graph.VertexAttribute("label", n.Label))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", n.ID)
		}
	}

	for i := 0; i+1 < len(nodes); i++ {
		err := g.AddEdge(nodes[i].ID, nodes[i+1].ID)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add edge from %s to %s", nodes[i].ID, nodes[i+1].ID)
		}
	}

	desc := dotDescription{Label: flow.Name}
	for _, n := range nodes {
		_, properties, err := g.VertexWithProperties(n.ID)
		if err != nil {
			return nil, errors.Wrap(err, "unable to get vertex properties")
		}

		desc.Statements = append(desc.Statements, dotStatement{Source: n.ID, Attr: properties.Attributes["label"]})
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}

	var edges []dotStatement
	for source, targets := range adjacency {
		for target := range targets {
			edges = append(edges, dotStatement{Source: source, Target: target})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}

		return edges[i].Target < edges[j].Target
	})
	desc.Statements = append(desc.Statements, edges...)

	tmpl, err := template.New("dot").Parse(dotTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse dot template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, desc); err != nil {
		return nil, errors.Wrap(err, "unable to render dot template")
	}

	return buf.Bytes(), nil
}
