package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownNode is returned by [Graph.Remove] when the key is not
	// present in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrGraphHasCycle is matched by every [CyclicGraphError] through
	// errors.Is. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// CyclicGraphError reports a cycle found while computing the closure of a
// node during [Graph.Remove]. Path lists the nodes of the cycle in
// traversal order, starting and ending with the repeated node.
type CyclicGraphError struct {
	Path []string
}

// Error implements the error interface.
func (e *CyclicGraphError) Error() string {
	return "cyclic graph: " + strings.Join(e.Path, " -> ")
}

// Unwrap lets errors.Is match [ErrGraphHasCycle].
func (e *CyclicGraphError) Unwrap() error { return ErrGraphHasCycle }

// Link is a directed edge from Origin to Destination carrying Value.
// The same link is recorded in the outbound list of Origin and the inbound
// list of Destination.
type Link[K comparable, V comparable] struct {
	Origin      K
	Destination K
	Value       V
}

type node[K comparable, V comparable] struct {
	out []*Link[K, V]
	in  []*Link[K, V]
}

// Graph is a directed graph whose nodes are addressed by a comparable key.
// Nodes live in an arena map; edges are stored as link lists on both
// endpoints so that inbound and outbound queries are O(degree).
//
// Multiple links between the same pair of nodes are allowed as long as
// their values differ; they model the same dependency declared under
// different versions or group types.
//
// The zero value is not usable - use [New]. Graph is not safe for
// concurrent use without external synchronization.
type Graph[K comparable, V comparable] struct {
	nodes map[K]*node[K, V]
	order []K
}

// New creates an empty graph.
func New[K comparable, V comparable]() *Graph[K, V] {
	return &Graph[K, V]{nodes: make(map[K]*node[K, V])}
}

// AddNode adds k to the graph. Adding an existing key is a no-op.
// It reports whether a new node was created.
func (g *Graph[K, V]) AddNode(k K) bool {
	if _, ok := g.nodes[k]; ok {
		return false
	}
	g.nodes[k] = &node[K, V]{}
	g.order = append(g.order, k)
	return true
}

// AddLink records a link from origin to destination, creating either node
// if needed. An identical link (same endpoints and value) is only recorded
// once. No cycle check is performed.
func (g *Graph[K, V]) AddLink(origin, destination K, value V) {
	g.AddNode(origin)
	g.AddNode(destination)
	o := g.nodes[origin]
	if slices.ContainsFunc(o.out, func(l *Link[K, V]) bool {
		return l.Destination == destination && l.Value == value
	}) {
		return
	}
	l := &Link[K, V]{Origin: origin, Destination: destination, Value: value}
	o.out = append(o.out, l)
	g.nodes[destination].in = append(g.nodes[destination].in, l)
}

// RemoveLink removes the link origin→destination carrying value from both
// endpoints. It reports whether a link was removed.
func (g *Graph[K, V]) RemoveLink(origin, destination K, value V) bool {
	o, ok := g.nodes[origin]
	if !ok {
		return false
	}
	i := slices.IndexFunc(o.out, func(l *Link[K, V]) bool {
		return l.Destination == destination && l.Value == value
	})
	if i < 0 {
		return false
	}
	g.detach(o.out[i])
	return true
}

// ReplaceLink changes the value of the link origin→destination carrying
// old. Both endpoints observe the new value. If an identical link with the
// new value already exists, the old link is removed instead.
func (g *Graph[K, V]) ReplaceLink(origin, destination K, old, value V) bool {
	o, ok := g.nodes[origin]
	if !ok {
		return false
	}
	i := slices.IndexFunc(o.out, func(l *Link[K, V]) bool {
		return l.Destination == destination && l.Value == old
	})
	if i < 0 {
		return false
	}
	if old == value {
		return true
	}
	if slices.ContainsFunc(o.out, func(l *Link[K, V]) bool {
		return l.Destination == destination && l.Value == value
	}) {
		g.detach(o.out[i])
		return true
	}
	o.out[i].Value = value
	return true
}

// detach removes l from the link lists of both endpoints.
func (g *Graph[K, V]) detach(l *Link[K, V]) {
	if o, ok := g.nodes[l.Origin]; ok {
		o.out = slices.DeleteFunc(o.out, func(x *Link[K, V]) bool { return x == l })
	}
	if d, ok := g.nodes[l.Destination]; ok {
		d.in = slices.DeleteFunc(d.in, func(x *Link[K, V]) bool { return x == l })
	}
}

// Contains reports whether k is a node of the graph.
func (g *Graph[K, V]) Contains(k K) bool {
	_, ok := g.nodes[k]
	return ok
}

// Nodes returns all node keys in insertion order.
func (g *Graph[K, V]) Nodes() []K {
	return slices.Clone(g.order)
}

// NodeCount returns the number of nodes.
func (g *Graph[K, V]) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph[K, V]) LinkCount() int {
	n := 0
	for _, nd := range g.nodes {
		n += len(nd.out)
	}
	return n
}

// Outbound returns the links leaving k in insertion order.
// The returned links are copies; use [Graph.ReplaceLink] to modify them.
func (g *Graph[K, V]) Outbound(k K) []Link[K, V] {
	if nd, ok := g.nodes[k]; ok {
		return copyLinks(nd.out)
	}
	return nil
}

// Inbound returns the links arriving at k in insertion order.
func (g *Graph[K, V]) Inbound(k K) []Link[K, V] {
	if nd, ok := g.nodes[k]; ok {
		return copyLinks(nd.in)
	}
	return nil
}

func copyLinks[K comparable, V comparable](ls []*Link[K, V]) []Link[K, V] {
	if len(ls) == 0 {
		return nil
	}
	out := make([]Link[K, V], len(ls))
	for i, l := range ls {
		out[i] = *l
	}
	return out
}

// Paths returns every directed path from a to b. Each path starts with a
// and ends with b. A node is never repeated within one path, so cycles
// do not cause infinite enumeration. The result is meant for diagnostics;
// its size is exponential in the worst case.
func (g *Graph[K, V]) Paths(a, b K) [][]K {
	if !g.Contains(a) || !g.Contains(b) {
		return nil
	}
	var (
		paths   [][]K
		current []K
		onPath  = make(map[K]bool)
	)
	var dfs func(k K)
	dfs = func(k K) {
		current = append(current, k)
		onPath[k] = true
		if k == b {
			paths = append(paths, slices.Clone(current))
		} else {
			seen := make(map[K]bool)
			for _, l := range g.nodes[k].out {
				if onPath[l.Destination] || seen[l.Destination] {
					continue
				}
				seen[l.Destination] = true
				dfs(l.Destination)
			}
		}
		onPath[k] = false
		current = current[:len(current)-1]
	}
	dfs(a)
	return paths
}

// Remove deletes k together with every node that is only reachable
// through k. The closure of k is computed first; if it contains a cycle a
// *[CyclicGraphError] is returned and the graph is left untouched.
//
// A node of the closure survives when it still has a referrer outside the
// closure, or is reachable from such a survivor. Everything else in the
// closure is deleted and all links touching deleted nodes are cleared on
// both sides. The operation is O(V+E) in the size of the closure.
func (g *Graph[K, V]) Remove(k K) error {
	if !g.Contains(k) {
		return ErrUnknownNode
	}
	closure, err := g.closure(k)
	if err != nil {
		return err
	}

	keep := make(map[K]bool)
	var mark func(n K)
	mark = func(n K) {
		if keep[n] || n == k {
			return
		}
		keep[n] = true
		for _, l := range g.nodes[n].out {
			mark(l.Destination)
		}
	}
	for n := range closure {
		if n == k {
			continue
		}
		for _, l := range g.nodes[n].in {
			if !closure[l.Origin] {
				mark(n)
				break
			}
		}
	}

	doomed := make(map[K]bool)
	for n := range closure {
		if !keep[n] {
			doomed[n] = true
		}
	}
	for n := range doomed {
		nd := g.nodes[n]
		for _, l := range slices.Clone(nd.out) {
			g.detach(l)
		}
		for _, l := range slices.Clone(nd.in) {
			g.detach(l)
		}
	}
	for n := range doomed {
		delete(g.nodes, n)
	}
	g.order = slices.DeleteFunc(g.order, func(n K) bool { return doomed[n] })
	return nil
}

// closure returns every node reachable from k, including k. Diamonds are
// legal; a node seen again while still on the DFS stack is a cycle.
func (g *Graph[K, V]) closure(k K) (map[K]bool, error) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[K]int)
	var stack []K
	var cycle []K

	var dfs func(n K) bool
	dfs = func(n K) bool {
		color[n] = gray
		stack = append(stack, n)
		for _, l := range g.nodes[n].out {
			switch color[l.Destination] {
			case white:
				if dfs(l.Destination) {
					return true
				}
			case gray:
				start := slices.Index(stack, l.Destination)
				cycle = append(slices.Clone(stack[start:]), l.Destination)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	if dfs(k) {
		path := make([]string, len(cycle))
		for i, n := range cycle {
			path[i] = fmt.Sprint(n)
		}
		return nil, &CyclicGraphError{Path: path}
	}

	closure := make(map[K]bool, len(color))
	for n := range color {
		closure[n] = true
	}
	return closure, nil
}
