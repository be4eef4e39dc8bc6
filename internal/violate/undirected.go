package violate

import "github.com/sem42198/mongo-migrator/internal/relgraph"

// UndirectedCycleNodes returns the set of nodes that lie on some
// undirected cycle, considering only non-reference edges and never
// reusing an edge twice on a path (self-loops are reference edges by
// the time this runs, per the search driver's preprocessing, so they
// are already excluded).
//
// A node lies on an undirected cycle iff at least one edge incident to
// it is not a bridge. Bridges are found with a standard Tarjan
// discovery/low-link DFS, tracking the incoming edge id (not node) so
// parallel edges between the same two nodes are handled correctly.
func UndirectedCycleNodes(g *relgraph.Graph) map[relgraph.NodeID]bool {
	adj := make(map[relgraph.NodeID][]struct {
		to  relgraph.NodeID
		eid relgraph.EdgeID
	})
	for _, eid := range g.Edges() {
		e := g.Edge(eid)
		if e.Reference {
			continue
		}
		adj[e.From] = append(adj[e.From], struct {
			to  relgraph.NodeID
			eid relgraph.EdgeID
		}{e.To, eid})
		adj[e.To] = append(adj[e.To], struct {
			to  relgraph.NodeID
			eid relgraph.EdgeID
		}{e.From, eid})
	}

	disc := make(map[relgraph.NodeID]int)
	low := make(map[relgraph.NodeID]int)
	onCycleNode := make(map[relgraph.NodeID]bool)
	timer := 0

	var visit func(n relgraph.NodeID, viaEdge relgraph.EdgeID)
	visit = func(n relgraph.NodeID, viaEdge relgraph.EdgeID) {
		timer++
		disc[n] = timer
		low[n] = timer
		for _, nb := range adj[n] {
			if nb.eid == viaEdge {
				continue
			}
			if d, seen := disc[nb.to]; seen {
				if d < low[n] {
					low[n] = d
				}
				continue
			}
			visit(nb.to, nb.eid)
			if low[nb.to] < low[n] {
				low[n] = low[nb.to]
			}
			if low[nb.to] <= disc[n] {
				// edge (n, nb.to) is not a bridge
				onCycleNode[n] = true
				onCycleNode[nb.to] = true
			}
		}
	}

	for _, id := range g.Nodes() {
		if _, seen := disc[id]; !seen {
			visit(id, -1)
		}
	}
	return onCycleNode
}
