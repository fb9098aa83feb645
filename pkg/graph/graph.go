package graph

import (
	"github.com/bft-labs/swga/pkg/dimer"
)

// Graph is an undirected compatibility graph. Edges hold 0-based node
// indices with Edges[i][0] < Edges[i][1].
type Graph struct {
	Nodes     []string
	Edges     [][2]int
	Threshold int

	// Excluded lists the inputs dropped by the self-dimer check, in input order.
	Excluded []string

	adj map[[2]int]struct{}
}

// Build applies the self-dimer exclusion and then connects every surviving
// pair whose dimer run does not exceed threshold.
func Build(seqs []string, threshold int) *Graph {
	g := &Graph{Threshold: threshold}
	for _, s := range seqs {
		if dimer.SelfRun(s) > threshold {
			g.Excluded = append(g.Excluded, s)
			continue
		}
		g.Nodes = append(g.Nodes, s)
	}

	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			if dimer.MaxRun(g.Nodes[i], g.Nodes[j]) <= threshold {
				g.Edges = append(g.Edges, [2]int{i, j})
			}
		}
	}
	g.index()
	return g
}

// HasEdge reports whether nodes i and j (0-based) are adjacent.
func (g *Graph) HasEdge(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	if g.adj == nil {
		g.index()
	}
	_, ok := g.adj[[2]int{i, j}]
	return ok
}

// Degree returns the number of edges touching node i.
func (g *Graph) Degree(i int) int {
	n := 0
	for _, e := range g.Edges {
		if e[0] == i || e[1] == i {
			n++
		}
	}
	return n
}

func (g *Graph) index() {
	g.adj = make(map[[2]int]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		g.adj[e] = struct{}{}
	}
}
