// Package mapper executes a docschema.Schema: it streams rows from the
// relational source, assembles nested documents, persists them to the
// target, then patches in cross-document references. spec.md §4.8 and
// §6.1/§6.2 describe the two interfaces this package consumes; this
// file declares them as Go interfaces so the engine never depends on a
// concrete relational or document-store client (connection management
// and transport are out of scope per spec.md §1).
package mapper

import (
	"context"

	"github.com/sem42198/mongo-migrator/internal/value"
)

// RowCursor streams rows one at a time, matching the cursor-style
// fetches spec.md §5 requires (one row in flight at a time, even when
// the underlying query returned many).
type RowCursor interface {
	Next(ctx context.Context) bool
	Row() value.Document
	Err() error
	Close() error
}

// Source is the subset of row-level relational queries the Data Mapper
// needs: a full (optionally sampled) table scan, a one-to-many lookup by
// foreign key, and a many-to-one lookup by primary key.
type Source interface {
	// QueryAll streams every row of table. If limit > 0 it is a preview
	// scan: `SELECT * FROM table ORDER BY RAND() LIMIT limit`.
	QueryAll(ctx context.Context, table string, limit int) (RowCursor, error)

	// QueryByFK streams every row of table where fkColumn = fkValue
	// (a one-to-many child lookup).
	QueryByFK(ctx context.Context, table, fkColumn string, fkValue value.Value) (RowCursor, error)

	// QueryByPK returns the single row of table where pkColumn = pkValue
	// (a many-to-one child lookup), or ok=false if no row matched.
	QueryByPK(ctx context.Context, table, pkColumn string, pkValue value.Value) (value.Document, bool, error)
}

// DocCursor streams target documents one at a time during a full scan.
type DocCursor interface {
	Next(ctx context.Context) bool
	Doc() value.Document
	Err() error
	Close() error
}

// Collection is a per-collection handle on the target, matching §6.2:
// insert_one, find, find_one, replace_one. Every inserted document gets
// an engine-assigned id under IDField, which must be preserved for
// reference patching.
type Collection interface {
	InsertOne(ctx context.Context, doc value.Document) (value.Value, error)
	Find(ctx context.Context) (DocCursor, error)
	FindOne(ctx context.Context, field string, v value.Value) (value.Document, bool, error)
	ReplaceOne(ctx context.Context, id value.Value, doc value.Document) error
}

// Target opens per-collection handles on the document database.
type Target interface {
	Collection(name string) Collection
}

// IDField is the field name every Collection implementation must set on
// the document it returns from InsertOne and must honor as the
// replace-by key in ReplaceOne.
const IDField = "_id"
