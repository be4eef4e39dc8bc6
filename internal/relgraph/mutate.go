package relgraph

import "fmt"

// Reverse toggles e.Reversed and swaps e.From/e.To, moving e between the
// old endpoints' adjacency sets. Converts a "child references parent"
// edge into "parent points at child": a one-to-many becomes a
// many-to-one, duplicating the parent under each child.
func (g *Graph) Reverse(id EdgeID) {
	e := g.Edge(id)
	oldFrom, oldTo := e.From, e.To

	delete(g.nodes[oldFrom].Outgoing, id)
	delete(g.nodes[oldTo].Incoming, id)

	e.From, e.To = oldTo, oldFrom
	e.Reversed = !e.Reversed

	g.nodes[e.From].Outgoing[id] = struct{}{}
	g.nodes[e.To].Incoming[id] = struct{}{}

	g.logStep(fmt.Sprintf("reverse(edge=%d %s.%s)", id, e.FKTable, e.FKColumn))
}

// MakeRef marks e as an id-level reference rather than an embedding.
// Idempotent.
func (g *Graph) MakeRef(id EdgeID) {
	e := g.Edge(id)
	if e.Reference {
		return
	}
	e.Reference = true
	g.logStep(fmt.Sprintf("ref(edge=%d %s.%s)", id, e.FKTable, e.FKColumn))
}

// CanDuplicate reports whether n is eligible for Duplicate: not flagged
// no_duplicate, and with at least two incoming non-reference edges.
func (g *Graph) CanDuplicate(id NodeID) bool {
	n := g.Node(id)
	if n.NoDuplicate {
		return false
	}
	count := 0
	for eid := range n.Incoming {
		if !g.Edge(eid).Reference {
			count++
		}
	}
	return count >= 2
}

// Duplicate replaces n with one fresh-id copy per incoming edge, so each
// copy has a unique parent. n and all its edges are removed; each former
// parent p of n gets a fresh edge p->n' to a new node n' carrying n's
// intrinsic fields, and n's outgoing edges are cloned onto each n' with
// their reversed/reference flags preserved. Permitted only when
// CanDuplicate(n) holds; callers must check first.
func (g *Graph) Duplicate(id NodeID) []NodeID {
	if !g.CanDuplicate(id) {
		panic(fmt.Sprintf("relgraph: Duplicate: node %d is not eligible", id))
	}
	orig := g.Node(id)

	incoming := make([]EdgeID, 0, len(orig.Incoming))
	for eid := range orig.Incoming {
		incoming = append(incoming, eid)
	}
	sortEdgeIDs(incoming)

	// Snapshot every incoming edge's fields before removeNode deletes them;
	// removeNode tears down both adjacency sides of each edge it touches,
	// so the edge ids in `incoming` no longer resolve afterward.
	incomingTemplates := make([]*Edge, 0, len(incoming))
	for _, eid := range incoming {
		e := g.Edge(eid)
		cp := *e
		incomingTemplates = append(incomingTemplates, &cp)
	}

	outgoing := make([]EdgeID, 0, len(orig.Outgoing))
	for eid := range orig.Outgoing {
		outgoing = append(outgoing, eid)
	}
	sortEdgeIDs(outgoing)

	outgoingTemplates := make([]*Edge, 0, len(outgoing))
	for _, eid := range outgoing {
		e := g.Edge(eid)
		cp := *e
		outgoingTemplates = append(outgoingTemplates, &cp)
	}

	table, pk, rowSize, n0, noDup := orig.Table, orig.PKCol, orig.RowSize, orig.N0, orig.NoDuplicate

	g.removeNode(id)

	var created []NodeID
	for _, itmpl := range incomingTemplates {
		clone := g.AddNode(table, pk, rowSize, n0)
		clone.NoDuplicate = noDup
		created = append(created, clone.ID)

		ne := g.AddEdge(itmpl.From, clone.ID, itmpl.FKColumn, itmpl.FKTable, itmpl.DistinctFKCount, itmpl.NullFKCount)
		ne.Reversed = itmpl.Reversed
		ne.Reference = itmpl.Reference

		for _, tmpl := range outgoingTemplates {
			ne := g.AddEdge(clone.ID, tmpl.To, tmpl.FKColumn, tmpl.FKTable, tmpl.DistinctFKCount, tmpl.NullFKCount)
			ne.Reversed = tmpl.Reversed
			ne.Reference = tmpl.Reference
		}
	}

	g.logStep(fmt.Sprintf("duplicate(node=%d %s -> %d copies)", id, table, len(created)))
	return created
}
