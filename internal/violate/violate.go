// Package violate finds the conditions that disqualify a relgraph.Graph
// from being a valid document forest: directed cycles among
// non-reference edges, multi-parent nodes, and no_duplicate nodes with
// more than one non-self incoming edge.
package violate

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

// CyclePath is the sequence of edges closing a detected directed cycle,
// from the revisited node back to itself.
type CyclePath []relgraph.EdgeID

// FindCycle runs a depth-first search over outgoing, non-reference edges
// and returns the first cycle found (any cycle suffices; callers re-run
// after each mutation so exhaustive cycle enumeration is unnecessary).
// Returns nil if the graph has no directed cycle among non-reference edges.
func FindCycle(g *relgraph.Graph) CyclePath {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[relgraph.NodeID]int)
	onStackEdge := make(map[relgraph.NodeID]relgraph.EdgeID)

	var path CyclePath
	var visit func(n relgraph.NodeID) bool
	visit = func(n relgraph.NodeID) bool {
		color[n] = gray
		node := g.Node(n)
		outgoing := sortedEdges(node.Outgoing)
		for _, eid := range outgoing {
			e := g.Edge(eid)
			if e.Reference {
				continue
			}
			to := e.To
			switch color[to] {
			case white:
				onStackEdge[to] = eid
				if visit(to) {
					return true
				}
			case gray:
				// Back-edge: reconstruct the cycle from `to` around to itself.
				path = reconstructCycle(g, to, n, eid, onStackEdge)
				return true
			case black:
				// Cross/forward edge: no cycle through here.
			}
		}
		color[n] = black
		return false
	}

	for _, n := range g.Nodes() {
		if color[n] == white {
			if visit(n) {
				return path
			}
		}
	}
	return nil
}

// reconstructCycle walks parent pointers recorded in onStackEdge from
// closingFrom back to target, then appends the closing edge.
func reconstructCycle(g *relgraph.Graph, target, closingFrom relgraph.NodeID, closingEdge relgraph.EdgeID, onStackEdge map[relgraph.NodeID]relgraph.EdgeID) CyclePath {
	var rev []relgraph.EdgeID
	cur := closingFrom
	for cur != target {
		eid, ok := onStackEdge[cur]
		if !ok {
			break
		}
		rev = append(rev, eid)
		cur = g.Edge(eid).From
	}
	// rev was built from closingFrom backward to target; reverse it so
	// the path reads target -> ... -> closingFrom, then append the
	// closing edge back to target.
	out := make(CyclePath, 0, len(rev)+1)
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return append(out, closingEdge)
}

func sortedEdges(set map[relgraph.EdgeID]struct{}) []relgraph.EdgeID {
	ids := make([]relgraph.EdgeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MultiParentNodes returns every node with >=2 incoming edges where at
// least one is not a reference. Multiple incoming reference edges alone
// do not constitute a violation.
func MultiParentNodes(g *relgraph.Graph) []relgraph.NodeID {
	var out []relgraph.NodeID
	for _, id := range g.Nodes() {
		n := g.Node(id)
		if len(n.Incoming) < 2 {
			continue
		}
		hasNonRef := false
		for eid := range n.Incoming {
			if !g.Edge(eid).Reference {
				hasNonRef = true
				break
			}
		}
		if hasNonRef {
			out = append(out, id)
		}
	}
	return out
}

// RefsInvalid returns every no_duplicate node that has more than one
// non-self incoming edge (self-loops are counted separately and never
// disqualify a no_duplicate node).
func RefsInvalid(g *relgraph.Graph) []relgraph.NodeID {
	var out []relgraph.NodeID
	for _, id := range g.Nodes() {
		n := g.Node(id)
		if !n.NoDuplicate {
			continue
		}
		nonSelf := 0
		for eid := range n.Incoming {
			e := g.Edge(eid)
			if e.IsSelfLoop() {
				continue
			}
			nonSelf++
		}
		if nonSelf > 1 {
			out = append(out, id)
		}
	}
	return out
}

// Valid reports whether g has no cycle, no multi-parent node, and no
// refs-valid violation: the three conditions spec.md §4.3 requires for a
// candidate to reach ranking.
func Valid(g *relgraph.Graph) bool {
	if FindCycle(g) != nil {
		return false
	}
	if len(MultiParentNodes(g)) > 0 {
		return false
	}
	if len(RefsInvalid(g)) > 0 {
		return false
	}
	return true
}
