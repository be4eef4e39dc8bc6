package mapper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/sem42198/mongo-migrator/internal/codec"
	"github.com/sem42198/mongo-migrator/internal/docschema"
	"github.com/sem42198/mongo-migrator/internal/value"
)

var mapperMetrics struct {
	rowsMapped metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/sem42198/mongo-migrator/mapper")
	mapperMetrics.rowsMapped, _ = m.Int64Counter("mongomigrator.mapper.rows_mapped",
		metric.WithDescription("rows assembled and persisted by the data mapper"),
		metric.WithUnit("{row}"),
	)
}

// Run executes Phase 1 (embedded load) for every root collection in
// schema, against a live source and target. A child row that cannot be
// resolved (a supposedly required FK with no matching row) is tolerated
// per spec.md §7: a null-equivalent is substituted for the child field
// and the row is still inserted, since the cost model already accounted
// for that loss.
func Run(ctx context.Context, schema *docschema.Schema, src Source, tgt Target) error {
	for _, coll := range schema.Collections {
		cursor, err := src.QueryAll(ctx, coll.Table, 0)
		if err != nil {
			return fmt.Errorf("mapper: scanning %s: %w", coll.Table, err)
		}
		target := tgt.Collection(coll.Table)

		for cursor.Next(ctx) {
			row := cursor.Row()
			enriched, err := embedChildren(ctx, row, coll.Key, coll.Children, src)
			if err != nil {
				cursor.Close()
				return fmt.Errorf("mapper: assembling %s row: %w", coll.Table, err)
			}
			if _, err := target.InsertOne(ctx, codec.TransformDocument(enriched)); err != nil {
				cursor.Close()
				return fmt.Errorf("mapper: inserting into %s: %w", coll.Table, err)
			}
			mapperMetrics.rowsMapped.Add(ctx, 1)
		}
		if err := cursor.Err(); err != nil {
			cursor.Close()
			return fmt.Errorf("mapper: scanning %s: %w", coll.Table, err)
		}
		cursor.Close()
	}
	return nil
}

// Preview executes Phase 1 against a sample of limit rows per root
// collection (applied independently per table, per SPEC_FULL.md §4) and
// returns the materialized rows instead of persisting them, for §6.5's
// preview output.
func Preview(ctx context.Context, schema *docschema.Schema, src Source, limit int) (map[string][]value.Document, error) {
	results := make(map[string][]value.Document, len(schema.Collections))

	for _, coll := range schema.Collections {
		cursor, err := src.QueryAll(ctx, coll.Table, limit)
		if err != nil {
			return nil, fmt.Errorf("mapper: preview scanning %s: %w", coll.Table, err)
		}

		var rows []value.Document
		for cursor.Next(ctx) {
			row := cursor.Row()
			enriched, err := embedChildren(ctx, row, coll.Key, coll.Children, src)
			if err != nil {
				cursor.Close()
				return nil, fmt.Errorf("mapper: preview assembling %s row: %w", coll.Table, err)
			}
			rows = append(rows, enriched)
		}
		if err := cursor.Err(); err != nil {
			cursor.Close()
			return nil, fmt.Errorf("mapper: preview scanning %s: %w", coll.Table, err)
		}
		cursor.Close()
		results[coll.Table] = rows
	}

	return results, nil
}

// embedChildren attaches one field per child to row: a list for a
// one-to-many child, a single document for a many-to-one child, and
// recurses into each child's own children. parentKey is the primary-key
// column of row's own table, needed by one-to-many children to look up
// their matching rows.
func embedChildren(ctx context.Context, row value.Document, parentKey string, children []*docschema.Child, src Source) (value.Document, error) {
	out := row.Clone()
	for _, c := range children {
		switch c.Kind {
		case docschema.OneToManyChild:
			list, err := mapOneToMany(ctx, out, parentKey, c, src)
			if err != nil {
				return value.Document{}, err
			}
			out.Set(c.Label, value.List(list))
		case docschema.ManyToOneChild:
			doc, err := mapManyToOne(ctx, &out, c, src)
			if err != nil {
				return value.Document{}, err
			}
			out.Set(c.Label, doc)
		}
	}
	return out, nil
}

// mapOneToMany implements §4.8's one-to-many child mapper: SELECT *
// FROM child_table WHERE fk_col = :parent_pk, stripping the FK column
// from every result and recursing into each result's own children.
func mapOneToMany(ctx context.Context, parent value.Document, parentKey string, c *docschema.Child, src Source) ([]value.Value, error) {
	parentPK, ok := parent.Get(parentKey)
	if !ok {
		return nil, fmt.Errorf("parent row missing key column %q", parentKey)
	}

	cursor, err := src.QueryByFK(ctx, c.Table, c.FKColumn, parentPK)
	if err != nil {
		return nil, fmt.Errorf("querying %s by %s: %w", c.Table, c.FKColumn, err)
	}
	defer cursor.Close()

	var out []value.Value
	for cursor.Next(ctx) {
		row := cursor.Row()
		row.Delete(c.FKColumn)
		nested, err := embedChildren(ctx, row, c.Key, c.Children, src)
		if err != nil {
			return nil, err
		}
		out = append(out, value.Doc(nested))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s by %s: %w", c.Table, c.FKColumn, err)
	}
	return out, nil
}

// mapManyToOne implements §4.8's many-to-one child mapper: pop fk_col
// from the parent row, SELECT * FROM child_table WHERE pk = :fk_val,
// returning a single embedded document with its own children recursed.
// A missing child row (null-equivalent FK, or a dangling reference) is
// tolerated: the field is set to null rather than aborting the whole
// row, per spec.md §7. Only the dangling-reference case is logged.
func mapManyToOne(ctx context.Context, parent *value.Document, c *docschema.Child, src Source) (value.Value, error) {
	fkVal, ok := parent.Get(c.FKColumn)
	if !ok {
		return value.Null(), nil
	}
	parent.Delete(c.FKColumn)
	if fkVal.IsNullEquivalent() {
		return value.Null(), nil
	}

	row, found, err := src.QueryByPK(ctx, c.Table, c.Key, fkVal)
	if err != nil {
		return value.Value{}, fmt.Errorf("querying %s by %s: %w", c.Table, c.Key, err)
	}
	if !found {
		logger.Printf("%s.%s=%s has no matching row; substituting null", c.Table, c.Key, fkVal.String())
		return value.Null(), nil
	}

	nested, err := embedChildren(ctx, row, c.Key, c.Children, src)
	if err != nil {
		return value.Value{}, err
	}
	return value.Doc(nested), nil
}
