package merkle

import (
	"fmt"
	"strings"
)

// Edge links a merge input to the merged node
type Edge struct {
	Source *Node
	Target *Node
}

// Graph records the merge history of a Dag for visualization
type Graph struct {
	Nodes []*Node
	Edges []Edge
	index map[*Node]int
}

// NewGraph returns an empty Graph
func NewGraph() *Graph {
	return &Graph{index: make(map[*Node]int)}
}

// Leaf implements Observer
func (g *Graph) Leaf(n *Node) {
	g.add(n)
}

// Merge implements Observer
func (g *Graph) Merge(left, right, merged *Node) {
	g.add(left)
	g.add(right)
	g.add(merged)
	g.Edges = append(g.Edges, Edge{Source: left, Target: merged}, Edge{Source: right, Target: merged})
}

func (g *Graph) add(n *Node) {
	if g.index == nil {
		g.index = make(map[*Node]int)
	}
	if _, ok := g.index[n]; ok {
		return
	}

	g.index[n] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

// PrintGraph renders nodes (red leaves, blue merges) followed by edges
func (g *Graph) PrintGraph() string {
	var b strings.Builder

	for i, n := range g.Nodes {
		color := "blue"
		if n.Kind == Leaf {
			color = "red"
		}
		fmt.Fprintf(&b, "%d {color: %s, label: %s}\n", i, color, n.Label)
	}

	for _, e := range g.Edges {
		fmt.Fprintf(&b, "%d -> %d\n", g.index[e.Source], g.index[e.Target])
	}

	return b.String()
}
