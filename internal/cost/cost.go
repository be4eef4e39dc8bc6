// Package cost scores ranked candidates by estimated data-loss, storage,
// and reference count per spec.md §4.6.
//
// The weight/formula pairing in spec.md §4.6 is unusual: the prose names
// data_storage_cost=1, data_loss_cost=10, ref_cost=7, but the scoring
// formula immediately below applies weight 1 to the loss term and weight
// 10 to the storage term. This implementation follows the formula text
// literally (it is the more specific, executable statement) rather than
// the preceding weight-to-name mapping; see DESIGN.md.
package cost

import (
	"sort"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

const floor = 1e-9

const (
	weightLoss    = 1.0
	weightStorage = 10.0
	weightRefs    = 7.0
)

// Raw holds one candidate's unscaled cost components.
type Raw struct {
	DataStorage float64
	DataLoss    float64
	RefCount    float64
}

// Scored pairs a candidate graph with its raw components and final score.
type Scored struct {
	Graph *relgraph.Graph
	Raw   Raw
	Score float64
}

// computeRaw derives the three raw components for one candidate.
// data_storage = sum over nodes of rowsize*N.
// data_loss is summed per source table name: max(0, N0*rowsize -
// sum-over-copies(D*rowsize)), since Duplicate can produce multiple
// nodes sharing one table name.
// refs = count of reference edges.
func computeRaw(g *relgraph.Graph) Raw {
	var storage float64
	lossByTable := make(map[string]struct {
		n0rowsize float64
		dsum      float64
	})

	for _, id := range g.Nodes() {
		n := g.Node(id)
		storage += n.RowSize * n.N

		entry := lossByTable[n.Table]
		if entry.n0rowsize == 0 {
			entry.n0rowsize = n.N0 * n.RowSize
		}
		entry.dsum += n.D * n.RowSize
		lossByTable[n.Table] = entry
	}

	var loss float64
	for _, entry := range lossByTable {
		l := entry.n0rowsize - entry.dsum
		if l > 0 {
			loss += l
		}
	}

	var refs float64
	for _, eid := range g.Edges() {
		if g.Edge(eid).Reference {
			refs++
		}
	}

	return Raw{DataStorage: storage, DataLoss: loss, RefCount: refs}
}

// Rank scales each candidate's raw components by the cross-candidate
// mean (floored at 1e-9), weights and sums them into a score, then sorts
// ascending (lower is better); ties break by insertion order, i.e. the
// order the graphs were given in, via a stable sort. Uses spec.md's
// fixed weights (loss=1, storage=10, refs=7, per the formula text).
func Rank(graphs []*relgraph.Graph) []Scored {
	return RankWithWeights(graphs, weightLoss, weightStorage, weightRefs)
}

// RankWithWeights is Rank with caller-supplied weights, letting a host
// override spec.md's fixed constants via internal/engineconfig without
// this package depending on that config type.
func RankWithWeights(graphs []*relgraph.Graph, wLoss, wStorage, wRefs float64) []Scored {
	if len(graphs) == 0 {
		return nil
	}

	scored := make([]Scored, len(graphs))
	var sumLoss, sumStorage, sumRefs float64
	for i, g := range graphs {
		raw := computeRaw(g)
		scored[i] = Scored{Graph: g, Raw: raw}
		sumLoss += raw.DataLoss
		sumStorage += raw.DataStorage
		sumRefs += raw.RefCount
	}

	n := float64(len(graphs))
	meanLoss := meanOrFloor(sumLoss, n)
	meanStorage := meanOrFloor(sumStorage, n)
	meanRefs := meanOrFloor(sumRefs, n)

	for i := range scored {
		r := scored[i].Raw
		scored[i].Score = wLoss*(r.DataLoss/meanLoss) +
			wStorage*(r.DataStorage/meanStorage) +
			wRefs*(r.RefCount/meanRefs)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	return scored
}

func meanOrFloor(sum, n float64) float64 {
	m := sum / n
	if m < floor {
		return floor
	}
	return m
}
