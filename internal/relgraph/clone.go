package relgraph

// Clone produces an independent Graph with a fresh node/edge table that
// preserves every id and the mutation log. A generic field-by-field copy
// would not rewire endpoint references into the new arena, so this walks
// nodes and edges explicitly. The step log is shared by reference
// (append-only: later mutations on either copy extend the same slice,
// which is how a search branch's ancestry stays visible across its
// descendants).
func (g *Graph) Clone() *Graph {
	cp := &Graph{
		Source:     g.Source,
		nodes:      make(map[NodeID]*Node, len(g.nodes)),
		edges:      make(map[EdgeID]*Edge, len(g.edges)),
		nextNodeID: g.nextNodeID,
		nextEdgeID: g.nextEdgeID,
		Steps:      g.Steps,
	}

	for id, n := range g.nodes {
		nn := &Node{
			ID:          n.ID,
			Table:       n.Table,
			PKCol:       n.PKCol,
			RowSize:     n.RowSize,
			N0:          n.N0,
			N:           n.N,
			D:           n.D,
			NoDuplicate: n.NoDuplicate,
			Path:        append([]string(nil), n.Path...),
			Incoming:    make(map[EdgeID]struct{}, len(n.Incoming)),
			Outgoing:    make(map[EdgeID]struct{}, len(n.Outgoing)),
		}
		for eid := range n.Incoming {
			nn.Incoming[eid] = struct{}{}
		}
		for eid := range n.Outgoing {
			nn.Outgoing[eid] = struct{}{}
		}
		cp.nodes[id] = nn
	}

	for id, e := range g.edges {
		ne := *e
		cp.edges[id] = &ne
	}

	return cp
}
