package graph

import (
	"fmt"
)

// Edge is a directed link between two node ids
type Edge struct {
	From int
	To   int
}

// Graph maps every key node to its ordered list of successors.
// Ids index directly into the backing slices, so they should be dense in [0, n).
type Graph struct {
	successors [][]int // successors[id]: out-links of id, duplicates preserved
	present    []bool  // present[id]: id was added as a key
	order      []int   // keys in first-appearance order
	edges      int
}

func New() *Graph {
	return &Graph{}
}

// Build a graph from a sequence of edges (every From becomes a key)
func FromEdges(edges []Edge) (*Graph, error) {
	g := New()
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register id as a key; no-op if it already is one
func (g *Graph) AddNode(id int) error {
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeNode, id)
	}
	g.grow(id)
	if !g.present[id] {
		g.present[id] = true
		g.successors[id] = []int{}
		g.order = append(g.order, id)
	}
	return nil
}

// Append `to` to the successor list of `from`.
// `to` is not added as a key.
func (g *Graph) AddEdge(from, to int) error {
	if to < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeNode, to)
	}
	if err := g.AddNode(from); err != nil {
		return err
	}
	g.successors[from] = append(g.successors[from], to)
	g.edges++
	return nil
}

// Replace the successor list of id (adding id as a key if needed)
func (g *Graph) SetSuccessors(id int, successors []int) error {
	for _, to := range successors {
		if to < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeNode, to)
		}
	}
	if err := g.AddNode(id); err != nil {
		return err
	}
	g.edges += len(successors) - len(g.successors[id])
	g.successors[id] = append([]int{}, successors...)
	return nil
}

func (g *Graph) grow(id int) {
	if id < len(g.present) {
		return
	}
	size := id + 1
	successors := make([][]int, size)
	copy(successors, g.successors)
	present := make([]bool, size)
	copy(present, g.present)
	g.successors = successors
	g.present = present
}

// Size of the id range: max(key) + 1, or 0 for an empty graph
func (g *Graph) Len() int {
	return len(g.present)
}

// Number of key nodes
func (g *Graph) NumNodes() int {
	return len(g.order)
}

// Number of edges (multi-edges counted individually)
func (g *Graph) NumEdges() int {
	return g.edges
}

// Has reports whether id is a key of the graph
func (g *Graph) Has(id int) bool {
	return id >= 0 && id < len(g.present) && g.present[id]
}

// Successors of id, in arrival order. The slice must not be modified.
func (g *Graph) Successors(id int) []int {
	if !g.Has(id) {
		return nil
	}
	return g.successors[id]
}

// Out-degree of id; 0 for dangling nodes and for ids that are not keys
func (g *Graph) OutDegree(id int) int {
	return len(g.Successors(id))
}

// IsDangling reports whether id is a key without successors
func (g *Graph) IsDangling(id int) bool {
	return g.Has(id) && len(g.successors[id]) == 0
}

// Keys in ascending id order
func (g *Graph) Nodes() []int {
	nodes := make([]int, 0, len(g.order))
	for id, ok := range g.present {
		if ok {
			nodes = append(nodes, id)
		}
	}
	return nodes
}

// Keys in the order they were first added
func (g *Graph) Order() []int {
	return append([]int{}, g.order...)
}

// Dangling keys in ascending id order
func (g *Graph) Dangling() []int {
	var dangling []int
	for id, ok := range g.present {
		if ok && len(g.successors[id]) == 0 {
			dangling = append(dangling, id)
		}
	}
	return dangling
}
