package mapper_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/mapper"
	"github.com/sem42198/mongo-migrator/internal/value"
)

func TestWritePreview_RendersNestedDocumentsAndLists(t *testing.T) {
	child := value.NewDocument()
	child.Set("title", value.Text("A1"))

	doc := value.NewDocument()
	doc.Set("name", value.Text("Ann"))
	doc.Set("author_id_books", value.List([]value.Value{value.Doc(child)}))

	var sb strings.Builder
	require.NoError(t, mapper.WritePreview(&sb, map[string][]value.Document{
		"authors": {doc},
	}))

	out := sb.String()
	assert.Contains(t, out, "authors:\n")
	assert.Contains(t, out, "name: Ann\n")
	assert.Contains(t, out, "author_id_books:\n")
	assert.Contains(t, out, "title: A1\n")
}

func TestWritePreview_TablesAreSortedAlphabetically(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, mapper.WritePreview(&sb, map[string][]value.Document{
		"zebras": {value.NewDocument()},
		"apples": {value.NewDocument()},
	}))

	out := sb.String()
	assert.Less(t, strings.Index(out, "apples:"), strings.Index(out, "zebras:"))
}
