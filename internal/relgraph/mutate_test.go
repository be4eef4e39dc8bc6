package relgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

func TestReverse_SwapsEndpointsAndFlag(t *testing.T) {
	g, authorsID, booksID, eid := twoTableGraph(t)

	g.Reverse(eid)

	e := g.Edge(eid)
	assert.True(t, e.Reversed)
	assert.Equal(t, booksID, e.From)
	assert.Equal(t, authorsID, e.To)
	_, ok := g.Node(booksID).Outgoing[eid]
	assert.True(t, ok)
	_, ok = g.Node(authorsID).Incoming[eid]
	assert.True(t, ok)
}

func TestMakeRef_IsIdempotent(t *testing.T) {
	g, _, _, eid := twoTableGraph(t)
	g.MakeRef(eid)
	g.MakeRef(eid)
	assert.True(t, g.Edge(eid).Reference)
	assert.Equal(t, 1, g.StepCount())
}

func TestCanDuplicate_RequiresTwoNonRefIncoming(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 64, 10)
	publishers := g.AddNode("publishers", "id", 64, 5)
	books := g.AddNode("books", "id", 128, 100)
	e1 := g.AddEdge(authors.ID, books.ID, "author_id", "books", 10, 0)
	assert.False(t, g.CanDuplicate(books.ID), "one incoming edge is not enough")

	e2 := g.AddEdge(publishers.ID, books.ID, "publisher_id", "books", 5, 0)
	assert.True(t, g.CanDuplicate(books.ID))

	g.MakeRef(e2.ID)
	assert.False(t, g.CanDuplicate(books.ID), "a reference edge does not count toward duplication")
	_ = e1
}

func TestCanDuplicate_NoDuplicateFlagSuppresses(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 64, 10)
	publishers := g.AddNode("publishers", "id", 64, 5)
	books := g.AddNode("books", "id", 128, 100)
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 10, 0)
	g.AddEdge(publishers.ID, books.ID, "publisher_id", "books", 5, 0)

	g.Node(books.ID).NoDuplicate = true
	assert.False(t, g.CanDuplicate(books.ID))
}

func TestDuplicate_OneNodePerIncomingEdge(t *testing.T) {
	g := relgraph.New(relgraph.Source{SchemaName: "shop"})
	authors := g.AddNode("authors", "id", 64, 10)
	publishers := g.AddNode("publishers", "id", 64, 5)
	books := g.AddNode("books", "id", 128, 100)
	reviews := g.AddNode("reviews", "id", 32, 500)
	g.AddEdge(authors.ID, books.ID, "author_id", "books", 10, 0)
	g.AddEdge(publishers.ID, books.ID, "publisher_id", "books", 5, 0)
	g.AddEdge(books.ID, reviews.ID, "book_id", "reviews", 100, 0)

	require.True(t, g.CanDuplicate(books.ID))
	created := g.Duplicate(books.ID)
	require.Len(t, created, 2)

	for _, id := range created {
		n := g.Node(id)
		assert.Equal(t, "books", n.Table)
		assert.Equal(t, float64(100), n.N0)
		assert.Len(t, n.Incoming, 1)
		assert.Len(t, n.Outgoing, 1, "the review edge template should be cloned onto every copy")
	}

	assert.Panics(t, func() { g.Node(books.ID) }, "the original node should be removed")
}

func TestDuplicate_PanicsWhenNotEligible(t *testing.T) {
	g, _, booksID, _ := twoTableGraph(t)
	assert.Panics(t, func() { g.Duplicate(booksID) })
}
