// Package sizeprop recomputes per-node row counts (N) and distinct-row
// counts (D) after the search driver's transformations, accounting for
// duplication and nullability per spec.md §4.5.
package sizeprop

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

// Propagate walks a valid forest pre-order from every root, applying the
// per-edge rule for reference, reversed, and forward-embedding edges to
// recompute each child's N and D from its parent's current values.
// Roots are found the same way the schema builder finds them: nodes
// whose incoming edges are all references (or none).
func Propagate(g *relgraph.Graph) {
	for _, id := range relgraph.Roots(g) {
		walk(g, id)
	}
}

func walk(g *relgraph.Graph, parentID relgraph.NodeID) {
	parent := g.Node(parentID)
	for _, eid := range sortedOutgoing(parent) {
		e := g.Edge(eid)
		if e.Reference {
			continue
		}
		child := g.Node(e.To)
		propagateEdge(parent, child, e)
		walk(g, e.To)
	}
}

// propagateEdge applies one of the three rules in spec.md §4.5 to a
// single non-reference edge parent->child.
func propagateEdge(parent, child *relgraph.Node, e *relgraph.Edge) {
	if e.Reversed {
		// Parent was originally the FK-owner; now embeds the child.
		factor := 1.0
		if parent.N0 > 0 {
			factor = 1 - e.NullFKCount/parent.N0
		}
		child.N = parent.N * factor
		dCandidate := parent.D * factor
		if dCandidate < child.N0 {
			child.D = dCandidate
		} else {
			child.D = child.N0
		}
		return
	}

	// Forward embedding: child is the FK-owner, becomes embedded under parent.
	ratio := 0.0
	if parent.N0 > 0 {
		ratio = parent.N / parent.N0
	}
	child.N = ratio * (child.N0 - e.NullFKCount)
	child.D = ratio * (child.N0 - e.NullFKCount)
}

func sortedOutgoing(n *relgraph.Node) []relgraph.EdgeID {
	ids := make([]relgraph.EdgeID, 0, len(n.Outgoing))
	for id := range n.Outgoing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
