package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format. Nodes and edges are
// written in key order.
func (v *Visualizer) WriteDOT(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	keys := v.graph.sortedKeys()
	nodeIDs := make(map[NodeKey]string, len(keys))
	for i, key := range keys {
		node := v.graph.nodes[key]
		nodeID := fmt.Sprintf("n%d", i)
		nodeIDs[key] = nodeID

		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q, style=filled];\n",
			nodeID, v.formatNodeLabel(node), v.getNodeColor(node))
	}

	for _, from := range keys {
		for _, to := range v.graph.edges[from] {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeIDs[from], nodeIDs[to])
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAdjacencyList writes the graph as an adjacency list
func (v *Visualizer) WriteAdjacencyList(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Adjacency List:\n")
	b.WriteString("===============\n\n")

	for _, from := range v.graph.sortedKeys() {
		tos := v.graph.edges[from]
		toStrs := make([]string, len(tos))
		for i, to := range tos {
			toStrs[i] = to.String()
		}
		fmt.Fprintf(&b, "%s -> [%s]\n", from, strings.Join(toStrs, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatNodeLabel creates a label for a node
func (v *Visualizer) formatNodeLabel(node *Node) string {
	label := node.Key.String()
	if node.Scope != "" {
		label += "\n(" + node.Scope + ")"
	}
	return label
}

// getNodeColor determines the color for a node based on its properties
func (v *Visualizer) getNodeColor(node *Node) string {
	if !node.Declared {
		return "lightgray" // Bound by an ancestor or missing
	}

	switch node.Scope {
	case "singleton":
		return "lightblue"
	case "unscoped":
		return "lightyellow"
	default:
		return "white"
	}
}
