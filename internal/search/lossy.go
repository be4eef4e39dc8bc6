package search

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
	"github.com/sem42198/mongo-migrator/internal/sizeprop"
	"github.com/sem42198/mongo-migrator/internal/violate"
)

// ExpandLossyEdges is the engine's only data-loss-repair heuristic
// (spec.md §4.7). For each candidate and each root-to-child embedding
// edge whose downstream subtree shows nonzero per-table data-loss, it
// generates additional candidates by (a) turning that edge into a
// reference, and (b) additionally reversing it. Each variant is
// re-propagated and, if valid, admitted and recursively re-examined.
// candidates is consumed and a superset (original plus admitted
// variants) is returned; subtreeLoss reports per-table data-loss the same
// way internal/cost's data_loss metric does, but scoped to the subtree
// under one node rather than the whole graph.
func ExpandLossyEdges(candidates []*relgraph.Graph) []*relgraph.Graph {
	out := append([]*relgraph.Graph(nil), candidates...)

	for i := 0; i < len(out); i++ {
		g := out[i]
		for _, rootID := range relgraph.Roots(g) {
			for _, eid := range rootOutgoingEmbeddingEdges(g, rootID) {
				e := g.Edge(eid)
				if e.Reference {
					continue
				}
				if subtreeLoss(g, e.To) <= 0 {
					continue
				}

				refVariant := g.Clone()
				refVariant.MakeRef(eid)
				admit(refVariant, &out)

				reversedVariant := g.Clone()
				reversedVariant.MakeRef(eid)
				reversedVariant.Reverse(eid)
				admit(reversedVariant, &out)
			}
		}
	}

	return out
}

// admit re-propagates sizes on candidate and appends it to *out if it is
// a valid forest, returning whether it was admitted.
func admit(candidate *relgraph.Graph, out *[]*relgraph.Graph) bool {
	if !violate.Valid(candidate) {
		return false
	}
	sizeprop.Propagate(candidate)
	*out = append(*out, candidate)
	return true
}

func rootOutgoingEmbeddingEdges(g *relgraph.Graph, rootID relgraph.NodeID) []relgraph.EdgeID {
	node := g.Node(rootID)
	var out []relgraph.EdgeID
	for eid := range node.Outgoing {
		out = append(out, eid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// subtreeLoss sums per-table data-loss (max(0, N0*rowsize -
// sum-over-copies(D*rowsize))) over every node reachable from root via
// non-reference edges, the same aggregation internal/cost uses
// graph-wide but restricted to this subtree.
func subtreeLoss(g *relgraph.Graph, root relgraph.NodeID) float64 {
	type acc struct {
		n0rowsize float64
		dsum      float64
	}
	byTable := make(map[string]*acc)

	var visit func(id relgraph.NodeID)
	visit = func(id relgraph.NodeID) {
		n := g.Node(id)
		a, ok := byTable[n.Table]
		if !ok {
			a = &acc{n0rowsize: n.N0 * n.RowSize}
			byTable[n.Table] = a
		}
		a.dsum += n.D * n.RowSize

		for eid := range n.Outgoing {
			e := g.Edge(eid)
			if e.Reference {
				continue
			}
			visit(e.To)
		}
	}
	visit(root)

	var total float64
	for _, a := range byTable {
		if l := a.n0rowsize - a.dsum; l > 0 {
			total += l
		}
	}
	return total
}
