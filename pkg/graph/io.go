package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Write emits g in the DIMACS edge format.
func (g *Graph) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p edge %d %d\n", len(g.Nodes), len(g.Edges)); err != nil {
		return err
	}
	for _, e := range g.Edges {
		if _, err := fmt.Fprintf(bw, "%d %d\n", e[0]+1, e[1]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteNodes emits the node sidecar, one sequence per line.
func (g *Graph) WriteNodes(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range g.Nodes {
		if _, err := bw.WriteString(n + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses a graph file and its node sidecar. nodes may be nil, in which
// case the returned graph has empty node labels.
func Read(edges io.Reader, nodes io.Reader) (*Graph, error) {
	g := &Graph{}

	var labels []string
	if nodes != nil {
		sc := bufio.NewScanner(nodes)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			labels = append(labels, line)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("graph: read nodes: %w", err)
		}
	}

	sc := bufio.NewScanner(edges)
	nodeCount, edgeCount := -1, -1
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] == "c" {
			continue
		}

		if fields[0] == "p" {
			if nodeCount >= 0 {
				return nil, fmt.Errorf("graph: line %d: duplicate header", lineNo)
			}
			if len(fields) != 4 || fields[1] != "edge" {
				return nil, fmt.Errorf("graph: line %d: bad header %q", lineNo, sc.Text())
			}
			var err error
			if nodeCount, err = strconv.Atoi(fields[2]); err != nil || nodeCount < 0 {
				return nil, fmt.Errorf("graph: line %d: bad node count %q", lineNo, fields[2])
			}
			if edgeCount, err = strconv.Atoi(fields[3]); err != nil || edgeCount < 0 {
				return nil, fmt.Errorf("graph: line %d: bad edge count %q", lineNo, fields[3])
			}
			continue
		}

		if nodeCount < 0 {
			return nil, fmt.Errorf("graph: line %d: edge before header", lineNo)
		}
		if len(fields) == 3 && fields[0] == "e" {
			fields = fields[1:]
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("graph: line %d: want two node indices, got %q", lineNo, sc.Text())
		}
		a, errA := strconv.Atoi(fields[0])
		b, errB := strconv.Atoi(fields[1])
		if errA != nil || errB != nil {
			return nil, fmt.Errorf("graph: line %d: non-integer node index in %q", lineNo, sc.Text())
		}
		if a < 1 || b < 1 || a > nodeCount || b > nodeCount || a == b {
			return nil, fmt.Errorf("graph: line %d: invalid edge %d-%d for %d nodes", lineNo, a, b, nodeCount)
		}
		if a > b {
			a, b = b, a
		}
		g.Edges = append(g.Edges, [2]int{a - 1, b - 1})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graph: read edges: %w", err)
	}
	if nodeCount < 0 {
		return nil, fmt.Errorf("graph: missing header")
	}
	if len(g.Edges) != edgeCount {
		return nil, fmt.Errorf("graph: header declares %d edges, found %d", edgeCount, len(g.Edges))
	}

	if labels != nil && len(labels) != nodeCount {
		return nil, fmt.Errorf("graph: header declares %d nodes, sidecar lists %d", nodeCount, len(labels))
	}
	if labels == nil {
		labels = make([]string, nodeCount)
	}
	g.Nodes = labels
	g.index()
	return g, nil
}
