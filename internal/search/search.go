// Package search implements the transformation search that mutates a
// relgraph.Graph toward a valid document forest: depth-first
// enumeration of candidates under a (2/3)*|E0| mutation budget,
// preprocessing self-loops and non-cyclic nodes into no_duplicate
// before the loop starts.
package search

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
	"github.com/sem42198/mongo-migrator/internal/violate"
)

// Budget is the fraction of the initial edge count the search may spend
// in mutations before giving up on a branch. spec.md §4.4 states this
// bound is the engine's only termination guarantee and must not be
// removed.
const Budget = 2.0 / 3.0

// Preprocess applies the three preparatory passes over the initial graph
// before enumeration begins:
//  1. force every self-loop edge to be a reference (embedding a row
//     inside itself is impossible);
//  2. flag no_duplicate on any node with more than one non-reference,
//     non-self incoming edge after step 1;
//  3. flag no_duplicate on any node that does not lie on an undirected
//     cycle (non-reference edges only) -- duplication only pays off
//     when reversal alone cannot resolve the node's multi-parent status.
func Preprocess(g *relgraph.Graph) {
	for _, eid := range g.Edges() {
		e := g.Edge(eid)
		if e.IsSelfLoop() && !e.Reference {
			g.MakeRef(eid)
		}
	}

	for _, id := range g.Nodes() {
		n := g.Node(id)
		count := 0
		for eid := range n.Incoming {
			e := g.Edge(eid)
			if !e.Reference && !e.IsSelfLoop() {
				count++
			}
		}
		if count > 1 {
			n.NoDuplicate = true
		}
	}

	onCycle := violate.UndirectedCycleNodes(g)
	for _, id := range g.Nodes() {
		if !onCycle[id] {
			g.Node(id).NoDuplicate = true
		}
	}
}

// Run enumerates candidate graphs from the preprocessed initial graph,
// applying one additional mutation per successor until each branch is
// either valid or exhausts the mutation budget. The worklist is a stack:
// enumeration is depth-first, and successor order within one expansion
// is fixed (Duplicate, then Reverse per edge, then MakeRef per edge) so
// results are reproducible for a given input.
func Run(initial *relgraph.Graph) []*relgraph.Graph {
	return RunWithBudget(initial, Budget)
}

// RunWithBudget is Run with a caller-supplied budget ratio, letting a
// host tune the (2/3)*|E0| bound via internal/engineconfig. The bound
// itself is never removed, only its ratio is configurable.
func RunWithBudget(initial *relgraph.Graph, budgetRatio float64) []*relgraph.Graph {
	budget := int(budgetRatio * float64(initial.NumEdges()))

	var candidates []*relgraph.Graph
	stack := []*relgraph.Graph{initial}

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if violate.Valid(g) {
			candidates = append(candidates, g)
			continue
		}
		if g.StepCount() >= budget {
			continue
		}

		stack = append(stack, expand(g)...)
	}

	return candidates
}

// expand identifies one problem focus on g (a multi-parent node,
// preferred, else the edges of one detected cycle) and returns one
// successor graph per applicable mutation.
func expand(g *relgraph.Graph) []*relgraph.Graph {
	if mp := violate.MultiParentNodes(g); len(mp) > 0 {
		return expandFocus(g, mp[0], nil)
	}
	if cycle := violate.FindCycle(g); cycle != nil {
		return expandFocus(g, 0, cycle)
	}
	return nil
}

// expandFocus generates successor graphs for one problem focus: either a
// multi-parent node (focusNode, edges ignored) or a cycle's edge set
// (focusEdges, node ignored -- callers pass the zero node id and a
// non-nil edge slice).
func expandFocus(g *relgraph.Graph, focusNode relgraph.NodeID, focusEdges violate.CyclePath) []*relgraph.Graph {
	var out []*relgraph.Graph

	if focusEdges == nil {
		if g.CanDuplicate(focusNode) {
			cp := g.Clone()
			cp.Duplicate(focusNode)
			out = append(out, cp)
		}
		node := g.Node(focusNode)
		for _, eid := range sortedIncoming(node) {
			e := g.Edge(eid)
			if !e.Reversed {
				cp := g.Clone()
				cp.Reverse(eid)
				out = append(out, cp)
			}
		}
		for _, eid := range sortedIncoming(node) {
			e := g.Edge(eid)
			if !e.Reference {
				cp := g.Clone()
				cp.MakeRef(eid)
				out = append(out, cp)
			}
		}
		return out
	}

	for _, eid := range focusEdges {
		e := g.Edge(eid)
		if !e.Reversed {
			cp := g.Clone()
			cp.Reverse(eid)
			out = append(out, cp)
		}
	}
	for _, eid := range focusEdges {
		e := g.Edge(eid)
		if !e.Reference {
			cp := g.Clone()
			cp.MakeRef(eid)
			out = append(out, cp)
		}
	}
	return out
}

func sortedIncoming(n *relgraph.Node) []relgraph.EdgeID {
	ids := make([]relgraph.EdgeID, 0, len(n.Incoming))
	for id := range n.Incoming {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
