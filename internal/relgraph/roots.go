package relgraph

// Roots returns the nodes whose incoming edges are all references
// (including the empty case): the top-level collections of a valid
// forest per spec.md §4.7.
func Roots(g *Graph) []NodeID {
	var out []NodeID
	for _, id := range g.Nodes() {
		n := g.Node(id)
		isRoot := true
		for eid := range n.Incoming {
			if !g.Edge(eid).Reference {
				isRoot = false
				break
			}
		}
		if isRoot {
			out = append(out, id)
		}
	}
	return out
}
