// Package dag implements a small directed-acyclic-graph utility: register
// nodes and dependency edges, then drain them in dependency order, or fail
// with the offending edges if the graph isn't acyclic. resolver.Resolver
// builds one graph per dependency-closure expansion (spec.md §4.8);
// resolver.Cascade does not use it. The consuming Pop/Step/Walk contract is grounded
// on original_source's internal::dag::DepGraph (spec.md §4.2): walk is
// defined there as "repeatedly step, then collect each layer", and
// walk_flatten as walk's layers concatenated - Walk/WalkFlatten here keep
// that same relationship.
package dag

import (
	"cmp"
	"sort"
)

// Graph is a directed graph over comparable, orderable node identities T,
// where a registered dependency edge from->to reads "from depends on to".
// Pop, Step, and Walk (and WalkFlatten, built on Walk) drain the graph as
// they run; Check walks a private clone so the receiver survives the call.
type Graph[T cmp.Ordered] struct {
	nodes map[T]map[T]bool // node -> its remaining (unresolved) dependencies
}

// New returns an empty Graph.
func New[T cmp.Ordered]() *Graph[T] {
	return &Graph[T]{nodes: make(map[T]map[T]bool)}
}

// RegisterNode ensures n is present in the graph, even with no recorded
// dependencies.
func (g *Graph[T]) RegisterNode(n T) {
	if _, ok := g.nodes[n]; !ok {
		g.nodes[n] = make(map[T]bool)
	}
}

// RegisterDep records that from depends on to, registering both nodes.
func (g *Graph[T]) RegisterDep(from, to T) {
	g.RegisterNode(from)
	g.RegisterNode(to)
	g.nodes[from][to] = true
}

// Edge is a directed from->to dependency edge.
type Edge[T cmp.Ordered] struct{ From, To T }

// ErrCyclicDependency reports every edge remaining among nodes that could
// not be resolved - the cycle itself, plus anything depending on it.
type ErrCyclicDependency[T cmp.Ordered] struct{ Edges []Edge[T] }

func (e *ErrCyclicDependency[T]) Error() string {
	return "cyclic dependency detected"
}

// Pop removes and returns one node with no remaining dependency. The
// second return is false once every remaining node still has one; if the
// graph is non-empty at that point, it is cyclic.
func (g *Graph[T]) Pop() (T, bool) {
	var names []T
	for n, deps := range g.nodes {
		if len(deps) == 0 {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		var zero T
		return zero, false
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	n := names[0]
	g.unregister(n)
	return n, true
}

// Step removes and returns every node with no remaining dependency in one
// pass - one layer of the graph, in value order for determinism. An empty
// return with the graph still non-empty means a cycle.
func (g *Graph[T]) Step() []T {
	var ready []T
	for n, deps := range g.nodes {
		if len(deps) == 0 {
			ready = append(ready, n)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	for _, n := range ready {
		g.unregister(n)
	}
	return ready
}

func (g *Graph[T]) unregister(n T) {
	delete(g.nodes, n)
	for _, deps := range g.nodes {
		delete(deps, n)
	}
}

// Walk drains the whole graph layer by layer via Step, returning each
// layer in order. Fails with ErrCyclicDependency as soon as a Step yields
// nothing while nodes remain.
func (g *Graph[T]) Walk() ([][]T, error) {
	var layers [][]T
	for len(g.nodes) > 0 {
		layer := g.Step()
		if len(layer) == 0 {
			return nil, g.cyclicError()
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// WalkFlatten drains the graph the same way Walk does, concatenating every
// layer into one order where a node's dependencies always precede it.
func (g *Graph[T]) WalkFlatten() ([]T, error) {
	layers, err := g.Walk()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(layers))
	for _, layer := range layers {
		out = append(out, layer...)
	}
	return out, nil
}

// Check reports whether the graph as currently registered is acyclic,
// without draining the receiver: it walks a private clone instead.
func (g *Graph[T]) Check() error {
	_, err := g.clone().Walk()
	return err
}

func (g *Graph[T]) clone() *Graph[T] {
	c := New[T]()
	for n, deps := range g.nodes {
		c.nodes[n] = make(map[T]bool, len(deps))
		for d := range deps {
			c.nodes[n][d] = true
		}
	}
	return c
}

// cyclicError reports every edge still registered among whatever nodes
// remain once the graph stops yielding a Step.
func (g *Graph[T]) cyclicError() error {
	var edges []Edge[T]
	for n, deps := range g.nodes {
		for d := range deps {
			edges = append(edges, Edge[T]{From: n, To: d})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return &ErrCyclicDependency[T]{Edges: edges}
}
