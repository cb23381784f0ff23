// Package dag provides a generic directed graph keyed by comparable node
// identities, used to hold resolved artifact dependencies.
//
// # Overview
//
// Nodes are stored in an arena addressed by their key, and each link is
// recorded on both endpoints: in the outbound list of its origin and in the
// inbound list of its destination. Inbound and outbound queries are
// therefore cheap in both directions, which the compatibility pass relies
// on when it walks from a dependency back to every artifact requiring it.
//
// # Basic Usage
//
// Create a graph with [New] and add links with [Graph.AddLink]. Nodes are
// created on demand and re-adding an existing key reuses the node:
//
//	g := dag.New[string, string]()
//	g.AddLink("app", "lib", "1.0")
//	g.AddLink("lib", "core", "2.1")
//
// Query the graph with [Graph.Outbound], [Graph.Inbound] and
// [Graph.Paths].
//
// # Removal
//
// Adding links never checks for cycles. [Graph.Remove] is the only guarded
// operation: it computes the closure of the removed node, fails with a
// [CyclicGraphError] if that closure contains a cycle, and otherwise prunes
// every node that is no longer reachable from outside the closure.
package dag
