package sizeprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
	"github.com/sem42198/mongo-migrator/internal/sizeprop"
)

func TestPropagate_ForwardEmbeddingScalesByParentRatio(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 8, 100) // N == N0 == 100
	books := g.AddNode("books", "id", 8, 400)
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 400, 40) // 40 null FKs

	sizeprop.Propagate(g)

	// ratio = 100/100 = 1; child.N = child.D = 1*(400-40) = 360
	assert.Equal(t, float64(360), books.N)
	assert.Equal(t, float64(360), books.D)
}

func TestPropagate_ForwardEmbeddingScalesDownWithParentShrink(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 8, 100)
	authors.N = 50 // parent already shrunk by an earlier propagation
	books := g.AddNode("books", "id", 8, 400)
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 400, 0)

	sizeprop.Propagate(g)

	// ratio = 50/100 = 0.5; child.N = child.D = 0.5*400 = 200
	assert.Equal(t, float64(200), books.N)
	assert.Equal(t, float64(200), books.D)
}

func TestPropagate_ReversedEdgeCapsDistinctAtChildN0(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	books := g.AddNode("books", "id", 8, 100)
	authors := g.AddNode("authors", "id", 8, 20)
	e := g.AddEdge(authors.ID, books.ID, "author_id", "books", 20, 0)
	g.Reverse(e.ID) // books now embeds authors

	sizeprop.Propagate(g)

	// roots: after the reversal the edge runs books->authors, so books has
	// no incoming edges and is the root; authors has the reversed edge
	// incoming, non-reference, so authors is not a root.
	// factor = 1 - 0/books.N0(100) = 1; authors.N = books.N*1 = books.N (100)
	// authors.D = min(books.D*1, authors.N0=20) = 20
	assert.Equal(t, float64(20), authors.D)
}

func TestPropagate_ReferenceEdgesAreNotWalked(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 8, 100)
	books := g.AddNode("books", "id", 8, 400)
	e := g.AddEdge(authors.ID, books.ID, "author_id", "books", 400, 0)
	g.MakeRef(e.ID)

	sizeprop.Propagate(g)

	assert.Equal(t, float64(400), books.N, "a reference edge must not mutate the child's size")
}
