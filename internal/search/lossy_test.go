package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
	"github.com/sem42198/mongo-migrator/internal/search"
	"github.com/sem42198/mongo-migrator/internal/sizeprop"
)

func TestExpandLossyEdges_AddsRefAndReversedVariantsWhenLossy(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 8, 10)
	books := g.AddNode("books", "id", 8, 100)
	// Half the FKs are null, so the full embed under authors would lose rows.
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 10, 50)
	sizeprop.Propagate(g)

	out := search.ExpandLossyEdges([]*relgraph.Graph{g})

	require.GreaterOrEqual(t, len(out), 2, "a lossy embedding edge should admit at least one repair variant")
	assert.Same(t, g, out[0], "the original candidate is always kept")
}

func TestExpandLossyEdges_NoOpWhenNoLoss(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 8, 10)
	books := g.AddNode("books", "id", 8, 100)
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 10, 0)
	sizeprop.Propagate(g)

	out := search.ExpandLossyEdges([]*relgraph.Graph{g})

	assert.Len(t, out, 1, "no lossy subtree means no additional candidates")
}
