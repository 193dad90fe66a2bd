package graph

import (
	"fmt"
	"slices"
	"sync"
)

// DependencyGraph manages the dependency relationships between bindings.
// It provides cycle detection, topological sorting, and dependency analysis.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[NodeKey]*Node
	edges map[NodeKey][]NodeKey // adjacency list representation

	// Cache for performance
	sortedNodes      []*Node
	sortedNodesDirty bool
}

// NodeKey uniquely identifies a node in the graph. Callers use canonical
// binding key ids.
type NodeKey string

func (k NodeKey) String() string {
	return string(k)
}

// NodeInfo describes a node to add.
type NodeInfo struct {
	Key          NodeKey
	Scope        string
	Dependencies []NodeKey
}

// Node represents a binding in the dependency graph
type Node struct {
	Key NodeKey

	// Declared is false for nodes only known as somebody's dependency.
	Declared bool
	Scope    string

	// Graph metadata
	InDegree  int // number of dependents
	OutDegree int // number of dependencies
	Depth     int // depth in dependency tree

	// Dependency information
	Dependencies []NodeKey // bindings this node depends on
	Dependents   []NodeKey // bindings that depend on this node
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:            make(map[NodeKey]*Node),
		edges:            make(map[NodeKey][]NodeKey),
		sortedNodesDirty: true,
	}
}

// AddNode adds a node and its outgoing edges. Adding a key twice replaces the
// first node's edges. Unlike a container, the graph accepts cycles so that
// callers can report all of them at once.
func (g *DependencyGraph) AddNode(info NodeInfo) error {
	if info.Key == "" {
		return fmt.Errorf("node key cannot be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[info.Key]
	if !exists {
		node = &Node{Key: info.Key}
		g.nodes[info.Key] = node
	}
	node.Declared = true
	node.Scope = info.Scope

	dependencies := make([]NodeKey, 0, len(info.Dependencies))
	for _, dep := range info.Dependencies {
		if slices.Contains(dependencies, dep) {
			continue
		}
		dependencies = append(dependencies, dep)

		// Ensure dependency node exists
		if _, exists := g.nodes[dep]; !exists {
			g.nodes[dep] = &Node{Key: dep}
		}
	}

	g.edges[info.Key] = dependencies
	g.updateDegrees()
	g.sortedNodesDirty = true

	return nil
}

// updateDegrees recalculates in/out degrees for all nodes
func (g *DependencyGraph) updateDegrees() {
	for _, node := range g.nodes {
		node.InDegree = 0
		node.OutDegree = 0
		node.Dependencies = nil
		node.Dependents = nil
	}

	for _, from := range g.sortedKeys() {
		tos := g.edges[from]
		fromNode := g.nodes[from]
		fromNode.OutDegree = len(tos)
		fromNode.Dependencies = slices.Clone(tos)

		for _, to := range tos {
			if toNode, exists := g.nodes[to]; exists {
				toNode.InDegree++
				toNode.Dependents = append(toNode.Dependents, from)
			}
		}
	}
}

// sortedKeys returns node keys in lexical order. Callers hold the lock.
func (g *DependencyGraph) sortedKeys() []NodeKey {
	keys := make([]NodeKey, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// TopologicalSort returns nodes in dependency order (dependencies first).
// Nodes of equal rank are ordered by key, so the result is deterministic.
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	g.mu.RLock()
	if !g.sortedNodesDirty && g.sortedNodes != nil {
		result := slices.Clone(g.sortedNodes)
		g.mu.RUnlock()
		return result, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Kahn's algorithm over remaining dependency counts
	remaining := make(map[NodeKey]int, len(g.nodes))
	queue := make([]NodeKey, 0)
	for _, key := range g.sortedKeys() {
		remaining[key] = len(g.edges[key])
		if remaining[key] == 0 {
			queue = append(queue, key)
		}
	}

	result := make([]*Node, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.nodes[current]
		result = append(result, node)

		var ready []NodeKey
		for _, dependent := range node.Dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		slices.Sort(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("circular dependency detected: graph contains %d nodes but only %d could be sorted",
			len(g.nodes), len(result))
	}

	g.sortedNodes = result
	g.sortedNodesDirty = false

	return slices.Clone(result), nil
}

// DetectCycles returns the first cycle found, or nil if the graph is acyclic.
func (g *DependencyGraph) DetectCycles() error {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	return &cycles[0]
}

// Cycles returns one CircularDependencyError per distinct cycle reached by a
// depth-first walk. Each path starts at its smallest key, and the list is
// sorted, so the result is deterministic.
func (g *DependencyGraph) Cycles() []CircularDependencyError {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		white = iota
		grey
		black
	)

	color := make(map[NodeKey]int, len(g.nodes))
	seen := make(map[string]bool)
	var cycles []CircularDependencyError
	var stack []NodeKey

	var visit func(key NodeKey)
	visit = func(key NodeKey) {
		color[key] = grey
		stack = append(stack, key)

		for _, dep := range g.edges[key] {
			switch color[dep] {
			case white:
				visit(dep)
			case grey:
				start := slices.Index(stack, dep)
				path := normalizeCycle(stack[start:])
				id := fmt.Sprint(path)
				if !seen[id] {
					seen[id] = true
					cycles = append(cycles, CircularDependencyError{Node: path[0], Path: path})
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[key] = black
	}

	for _, key := range g.sortedKeys() {
		if color[key] == white {
			visit(key)
		}
	}

	slices.SortFunc(cycles, func(a, b CircularDependencyError) int {
		return slices.Compare(a.Path, b.Path)
	})
	return cycles
}

// normalizeCycle rotates a cycle so that it starts at its smallest key.
func normalizeCycle(cycle []NodeKey) []NodeKey {
	start := 0
	for i, key := range cycle {
		if key < cycle[start] {
			start = i
		}
	}

	path := make([]NodeKey, 0, len(cycle))
	path = append(path, cycle[start:]...)
	path = append(path, cycle[:start]...)
	return path
}

// GetDependencies returns the direct dependencies of a node
func (g *DependencyGraph) GetDependencies(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if node, exists := g.nodes[key]; exists {
		return slices.Clone(node.Dependencies)
	}
	return nil
}

// GetDependents returns the nodes that depend on the given node
func (g *DependencyGraph) GetDependents(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if node, exists := g.nodes[key]; exists {
		return slices.Clone(node.Dependents)
	}
	return nil
}

// GetTransitiveDependencies returns all dependencies (direct and indirect)
func (g *DependencyGraph) GetTransitiveDependencies(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[NodeKey]bool)
	result := make([]NodeKey, 0)

	var collect func(current NodeKey)
	collect = func(current NodeKey) {
		if visited[current] {
			return
		}
		visited[current] = true

		for _, dep := range g.edges[current] {
			if !visited[dep] {
				result = append(result, dep)
				collect(dep)
			}
		}
	}

	collect(key)
	return result
}

// GetNode returns the node for a given key
func (g *DependencyGraph) GetNode(key NodeKey) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.nodes[key]
}

// HasNode checks if a node exists in the graph
func (g *DependencyGraph) HasNode(key NodeKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[key]
	return exists
}

// Size returns the number of nodes in the graph
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.nodes)
}

// IsAcyclic returns true if the graph has no cycles
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// GetRoots returns all nodes that nothing depends on, sorted by key
func (g *DependencyGraph) GetRoots() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roots := make([]*Node, 0)
	for _, key := range g.sortedKeys() {
		if node := g.nodes[key]; node.InDegree == 0 {
			roots = append(roots, node)
		}
	}
	return roots
}

// GetLeaves returns all nodes without dependencies, sorted by key
func (g *DependencyGraph) GetLeaves() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	leaves := make([]*Node, 0)
	for _, key := range g.sortedKeys() {
		if node := g.nodes[key]; node.OutDegree == 0 {
			leaves = append(leaves, node)
		}
	}
	return leaves
}

// CalculateDepths assigns depth levels to nodes based on their dependencies.
// Leaves get depth 0. Nodes that only reach each other keep depth -1.
func (g *DependencyGraph) CalculateDepths() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, node := range g.nodes {
		node.Depth = -1
	}

	queue := make([]*Node, 0)
	for _, key := range g.sortedKeys() {
		if node := g.nodes[key]; len(node.Dependencies) == 0 {
			node.Depth = 0
			queue = append(queue, node)
		}
	}

	// BFS bounded by the node count so cycles cannot loop forever
	limit := len(g.nodes)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, depKey := range current.Dependents {
			dep := g.nodes[depKey]
			newDepth := current.Depth + 1
			if dep.Depth < newDepth && newDepth <= limit {
				dep.Depth = newDepth
				queue = append(queue, dep)
			}
		}
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("Node{%s, in:%d, out:%d, depth:%d}",
		n.Key, n.InDegree, n.OutDegree, n.Depth)
}
