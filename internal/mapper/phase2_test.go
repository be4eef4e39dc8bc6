package mapper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/mapper"
)

func TestPatchRefs_SetsOneToManyRefOnEmbeddedParent(t *testing.T) {
	schema := buildAuthorsBooksReviewsSchema(t)
	src := seededSource()
	tgt := newFakeTarget()

	require.NoError(t, mapper.Run(context.Background(), schema, src, tgt))
	require.NoError(t, mapper.PatchRefs(context.Background(), schema, tgt))

	cursor, err := tgt.Collection("authors").Find(context.Background())
	require.NoError(t, err)

	var sawBookWithReview, sawBookWithoutReview bool
	for cursor.Next(context.Background()) {
		doc := cursor.Doc()
		booksVal, ok := doc.Get("author_id_books")
		require.True(t, ok)
		books, _ := booksVal.List()
		for _, bv := range books {
			bookDoc, _ := bv.Document()
			refVal, ok := bookDoc.Get("book_id_reviews_ref")
			require.True(t, ok, "every embedded book should get the deferred ref field, even if empty")
			ids, _ := refVal.List()
			titleVal, _ := bookDoc.Get("title")
			title, _ := titleVal.Text()
			switch title {
			case "A1":
				assert.Len(t, ids, 1, "book A1 has one review")
				sawBookWithReview = true
			case "A2":
				assert.Empty(t, ids, "book A2 has no reviews")
				sawBookWithoutReview = true
			}
		}
	}
	assert.True(t, sawBookWithReview)
	assert.True(t, sawBookWithoutReview)
}
