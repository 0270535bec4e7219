package lineage

import (
	"fmt"
	"strings"

	"wealthos/governance/pkg/governance"
)

// NodeKind distinguishes the three layers of a lineage graph.
type NodeKind string

const (
	NodeInput     NodeKind = "input"
	NodeTransform NodeKind = "transform"
	NodeOutput    NodeKind = "output"
)

// Node is a vertex of the lineage graph.
type Node struct {
	ID        string               `json:"id"`
	Kind      NodeKind             `json:"kind"`
	Label     string               `json:"label"`
	Detail    string               `json:"detail,omitempty"`
	RiskLevel governance.RiskLevel `json:"risk_level,omitempty"`
}

// Edge is a directed link between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the node/edge form of a lineage used for visualization.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildGraph derives the visualization graph of l. Every input feeds the
// first transform, transforms chain in step order and the last transform
// feeds every output. Without transforms, inputs feed outputs directly.
func BuildGraph(l *governance.Lineage) Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(l.Inputs)+len(l.Transforms)+len(l.Outputs)),
		Edges: []Edge{},
	}

	inputIDs := make([]string, len(l.Inputs))
	for i, in := range l.Inputs {
		id := fmt.Sprintf("input-%d", i)
		inputIDs[i] = id
		g.Nodes = append(g.Nodes, Node{
			ID:     id,
			Kind:   NodeInput,
			Label:  in.Collection,
			Detail: strings.Join(in.Fields, ", "),
		})
	}

	transformIDs := make([]string, len(l.Transforms))
	for i, t := range l.Transforms {
		id := fmt.Sprintf("transform-%d", t.StepNo)
		transformIDs[i] = id
		g.Nodes = append(g.Nodes, Node{
			ID:        id,
			Kind:      NodeTransform,
			Label:     t.Title,
			Detail:    t.Formula,
			RiskLevel: t.RiskLevel,
		})
	}

	outputIDs := make([]string, len(l.Outputs))
	for i, out := range l.Outputs {
		id := fmt.Sprintf("output-%d", i)
		outputIDs[i] = id
		g.Nodes = append(g.Nodes, Node{
			ID:     id,
			Kind:   NodeOutput,
			Label:  out.Field,
			Detail: out.Type,
		})
	}

	if len(transformIDs) == 0 {
		for _, from := range inputIDs {
			for _, to := range outputIDs {
				g.Edges = append(g.Edges, Edge{From: from, To: to})
			}
		}
		return g
	}

	for _, from := range inputIDs {
		g.Edges = append(g.Edges, Edge{From: from, To: transformIDs[0]})
	}
	for i := 1; i < len(transformIDs); i++ {
		g.Edges = append(g.Edges, Edge{From: transformIDs[i-1], To: transformIDs[i]})
	}
	last := transformIDs[len(transformIDs)-1]
	for _, to := range outputIDs {
		g.Edges = append(g.Edges, Edge{From: last, To: to})
	}

	return g
}
