package mapper_test

import (
	"context"

	"github.com/sem42198/mongo-migrator/internal/mapper"
	"github.com/sem42198/mongo-migrator/internal/value"
)

// The fakes below back the mapper tests the way internal/storage/memory
// backs the teacher's storage-layer tests: no live database, just a map
// kept in memory with the same narrow surface the real driver exposes.

type fakeCursor struct {
	rows []value.Document
	idx  int
}

func newFakeCursor(rows []value.Document) *fakeCursor { return &fakeCursor{rows: rows, idx: -1} }

func (c *fakeCursor) Next(ctx context.Context) bool {
	c.idx++
	return c.idx < len(c.rows)
}
func (c *fakeCursor) Row() value.Document { return c.rows[c.idx] }
func (c *fakeCursor) Err() error          { return nil }
func (c *fakeCursor) Close() error        { return nil }

type fakeDocCursor struct {
	docs []value.Document
	idx  int
}

func newFakeDocCursor(docs []value.Document) *fakeDocCursor {
	return &fakeDocCursor{docs: docs, idx: -1}
}

func (c *fakeDocCursor) Next(ctx context.Context) bool {
	c.idx++
	return c.idx < len(c.docs)
}
func (c *fakeDocCursor) Doc() value.Document { return c.docs[c.idx] }
func (c *fakeDocCursor) Err() error          { return nil }
func (c *fakeDocCursor) Close() error        { return nil }

// fakeSource holds relational rows keyed by table name.
type fakeSource struct {
	tables map[string][]value.Document
}

func newFakeSource() *fakeSource {
	return &fakeSource{tables: make(map[string][]value.Document)}
}

func (f *fakeSource) addRow(table string, row value.Document) {
	f.tables[table] = append(f.tables[table], row)
}

func (f *fakeSource) QueryAll(ctx context.Context, table string, limit int) (mapper.RowCursor, error) {
	rows := f.tables[table]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return newFakeCursor(append([]value.Document(nil), rows...)), nil
}

func (f *fakeSource) QueryByFK(ctx context.Context, table, fkColumn string, fkValue value.Value) (mapper.RowCursor, error) {
	key, _ := fkValue.AsKey()
	var out []value.Document
	for _, row := range f.tables[table] {
		v, ok := row.Get(fkColumn)
		if !ok {
			continue
		}
		k, ok := v.AsKey()
		if ok && k == key {
			out = append(out, row)
		}
	}
	return newFakeCursor(out), nil
}

func (f *fakeSource) QueryByPK(ctx context.Context, table, pkColumn string, pkValue value.Value) (value.Document, bool, error) {
	key, _ := pkValue.AsKey()
	for _, row := range f.tables[table] {
		v, ok := row.Get(pkColumn)
		if !ok {
			continue
		}
		if k, ok := v.AsKey(); ok && k == key {
			return row, true, nil
		}
	}
	return value.Document{}, false, nil
}

// fakeTarget is an in-memory document store keyed by collection name.
type fakeTarget struct {
	collections map[string]*fakeCollection
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{collections: make(map[string]*fakeCollection)}
}

func (f *fakeTarget) Collection(name string) mapper.Collection {
	c, ok := f.collections[name]
	if !ok {
		c = &fakeCollection{byID: make(map[int64]value.Document)}
		f.collections[name] = c
	}
	return c
}

type fakeCollection struct {
	nextID int64
	byID   map[int64]value.Document
	order  []int64
}

func (c *fakeCollection) InsertOne(ctx context.Context, doc value.Document) (value.Value, error) {
	c.nextID++
	id := c.nextID
	doc.Set(mapper.IDField, value.Int(id))
	c.byID[id] = doc
	c.order = append(c.order, id)
	return value.Int(id), nil
}

func (c *fakeCollection) Find(ctx context.Context) (mapper.DocCursor, error) {
	docs := make([]value.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.byID[id])
	}
	return newFakeDocCursor(docs), nil
}

func (c *fakeCollection) FindOne(ctx context.Context, field string, v value.Value) (value.Document, bool, error) {
	key, _ := v.AsKey()
	for _, id := range c.order {
		doc := c.byID[id]
		fv, ok := doc.Get(field)
		if !ok {
			continue
		}
		if k, ok := fv.AsKey(); ok && k == key {
			return doc, true, nil
		}
	}
	return value.Document{}, false, nil
}

func (c *fakeCollection) ReplaceOne(ctx context.Context, id value.Value, doc value.Document) error {
	i, _ := id.Int()
	c.byID[i] = doc
	return nil
}
