package cost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/cost"
	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

func graphWithSizes(t *testing.T, n0, n, d, rowSize float64) *relgraph.Graph {
	t.Helper()
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	node := g.AddNode("t", "id", rowSize, n0)
	node.N = n
	node.D = d
	return g
}

func TestRank_OrdersLowestScoreFirst(t *testing.T) {
	cheap := graphWithSizes(t, 10, 10, 10, 8)   // no loss, small storage
	costly := graphWithSizes(t, 10, 10, 2, 800) // large loss, large storage

	scored := cost.Rank([]*relgraph.Graph{costly, cheap})
	require.Len(t, scored, 2)
	assert.Same(t, cheap, scored[0].Graph, "the cheaper candidate should rank first")
}

func TestRank_TiesPreserveInputOrder(t *testing.T) {
	a := graphWithSizes(t, 10, 10, 10, 8)
	b := graphWithSizes(t, 10, 10, 10, 8)

	scored := cost.Rank([]*relgraph.Graph{a, b})
	require.Len(t, scored, 2)
	assert.Same(t, a, scored[0].Graph)
	assert.Same(t, b, scored[1].Graph)
	assert.Equal(t, scored[0].Score, scored[1].Score)
}

func TestRank_EmptyInputReturnsNil(t *testing.T) {
	assert.Nil(t, cost.Rank(nil))
}

func TestRankWithWeights_LossCountsMaxZeroPerTable(t *testing.T) {
	// Duplicate can leave two nodes sharing a table name; only a net
	// loss across the copies should count, never a net gain.
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	a := g.AddNode("books", "id", 10, 100)
	a.N, a.D = 60, 60
	b := g.AddNode("books", "id", 10, 100)
	b.N, b.D = 60, 60

	scored := cost.RankWithWeights([]*relgraph.Graph{g}, 1, 10, 7)
	require.Len(t, scored, 1)
	assert.Equal(t, float64(0), scored[0].Raw.DataLoss, "two full-size copies should show no loss against a single source table's N0")
}

func TestRankWithWeights_RefCountsOnlyReferenceEdges(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	a := g.AddNode("a", "id", 8, 10)
	b := g.AddNode("b", "id", 8, 10)
	e := g.AddEdge(a.ID, b.ID, "a_id", "b", 10, 0)
	g.MakeRef(e.ID)

	scored := cost.RankWithWeights([]*relgraph.Graph{g}, 1, 10, 7)
	require.Len(t, scored, 1)
	assert.Equal(t, float64(1), scored[0].Raw.RefCount)
}
