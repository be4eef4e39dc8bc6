package mapper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/sem42198/mongo-migrator/internal/docschema"
	"github.com/sem42198/mongo-migrator/internal/value"
)

var refMetrics struct {
	refsPatched metric.Int64Counter
}

func init() {
	m := otel.Meter("github.com/sem42198/mongo-migrator/mapper")
	refMetrics.refsPatched, _ = m.Int64Counter("mongomigrator.mapper.refs_patched",
		metric.WithDescription("reference fields written during phase 2"),
		metric.WithUnit("{ref}"),
	)
}

// PatchRefs executes Phase 2 (reference patching): for each Ref in
// schema, walk parent_path within every document of the root collection
// and set the reference field, then replace the document. A
// target-scan mismatch or an absent _id is fatal to the current Ref's
// pass (spec.md §7); the caller may retry.
func PatchRefs(ctx context.Context, schema *docschema.Schema, tgt Target) error {
	for _, ref := range schema.Refs {
		if err := patchOne(ctx, ref, tgt); err != nil {
			return fmt.Errorf("mapper: patching ref %s.%s: %w", ref.ChildCollection, ref.FKColumn, err)
		}
	}
	return nil
}

func patchOne(ctx context.Context, ref *docschema.Ref, tgt Target) error {
	switch ref.Kind {
	case docschema.OneToManyRef:
		return patchOneToMany(ctx, ref, tgt)
	case docschema.ManyToOneRef:
		return patchManyToOne(ctx, ref, tgt)
	default:
		return fmt.Errorf("unknown ref kind %v", ref.Kind)
	}
}

// patchOneToMany pre-builds an index mapping each child's FK value to
// the list of its target ids, then at each resolved parent document sets
// field "<fk_col>_<child_name>_ref" to that list (possibly empty).
func patchOneToMany(ctx context.Context, ref *docschema.Ref, tgt Target) error {
	index := make(map[any][]value.Value)

	children := tgt.Collection(ref.ChildCollection)
	cursor, err := children.Find(ctx)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", ref.ChildCollection, err)
	}
	for cursor.Next(ctx) {
		child := cursor.Doc()
		fk, ok := child.Get(ref.FKColumn)
		if !ok || fk.IsNullEquivalent() {
			continue
		}
		key, ok := fk.AsKey()
		if !ok {
			continue
		}
		id, ok := child.Get(IDField)
		if !ok {
			cursor.Close()
			return fmt.Errorf("child in %s missing %s", ref.ChildCollection, IDField)
		}
		index[key] = append(index[key], id)
	}
	if err := cursor.Err(); err != nil {
		cursor.Close()
		return fmt.Errorf("scanning %s: %w", ref.ChildCollection, err)
	}
	cursor.Close()

	label := fmt.Sprintf("%s_%s_ref", ref.FKColumn, ref.ChildCollection)

	return walkParentPath(ctx, ref, tgt, func(record *value.Document) {
		keyVal, ok := record.Get(ref.ParentKey)
		var ids []value.Value
		if ok {
			if k, ok := keyVal.AsKey(); ok {
				ids = index[k]
			}
		}
		record.Set(label, value.List(ids))
		refMetrics.refsPatched.Add(ctx, 1)
	})
}

// patchManyToOne resolves, for each parent document carrying fk_col, the
// single child by child_key = fk_value, and sets "<fk_col>_ref" to that
// child's id. Skipped when the FK value is null-equivalent or no child
// matches; a lookup error or a matched child without an _id is fatal.
func patchManyToOne(ctx context.Context, ref *docschema.Ref, tgt Target) error {
	label := fmt.Sprintf("%s_ref", ref.FKColumn)
	children := tgt.Collection(ref.ChildCollection)

	var patchErr error
	err := walkParentPath(ctx, ref, tgt, func(record *value.Document) {
		if patchErr != nil {
			return
		}
		fk, ok := record.Get(ref.FKColumn)
		if !ok || fk.IsNullEquivalent() {
			return
		}
		child, found, err := children.FindOne(ctx, ref.ChildKey, fk)
		if err != nil {
			patchErr = fmt.Errorf("looking up %s by %s: %w", ref.ChildCollection, ref.ChildKey, err)
			return
		}
		if !found {
			return
		}
		id, ok := child.Get(IDField)
		if !ok {
			patchErr = fmt.Errorf("child in %s missing %s", ref.ChildCollection, IDField)
			return
		}
		record.Set(label, id)
		refMetrics.refsPatched.Add(ctx, 1)
	})
	if err != nil {
		return err
	}
	return patchErr
}

// walkParentPath scans every document in the root collection named by
// ref.ParentPath[0], descends the remaining path labels (which may
// traverse arrays of embedded documents), applies update to every
// resolved leaf record, and replaces the document.
func walkParentPath(ctx context.Context, ref *docschema.Ref, tgt Target, update func(*value.Document)) error {
	root := tgt.Collection(ref.ParentPath[0])
	cursor, err := root.Find(ctx)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", ref.ParentPath[0], err)
	}
	defer cursor.Close()

	for cursor.Next(ctx) {
		doc := cursor.Doc()
		findParents(&doc, ref.ParentPath[1:], update)

		id, ok := doc.Get(IDField)
		if !ok {
			return fmt.Errorf("document in %s missing %s", ref.ParentPath[0], IDField)
		}
		if err := root.ReplaceOne(ctx, id, doc); err != nil {
			return fmt.Errorf("replacing document in %s: %w", ref.ParentPath[0], err)
		}
	}
	return cursor.Err()
}

// findParents descends path within doc (a document, or a document
// nested under a list field), applying update at every leaf the path
// resolves to.
func findParents(doc *value.Document, path []string, update func(*value.Document)) {
	if len(path) == 0 {
		update(doc)
		return
	}

	label := path[0]
	rest := path[1:]

	v, ok := doc.Get(label)
	if !ok {
		return
	}

	switch v.Kind() {
	case value.KindList:
		list, _ := v.List()
		changed := false
		for i, item := range list {
			if item.Kind() != value.KindDocument {
				continue
			}
			nested, _ := item.Document()
			findParents(&nested, rest, update)
			list[i] = value.Doc(nested)
			changed = true
		}
		if changed {
			doc.Set(label, value.List(list))
		}
	case value.KindDocument:
		nested, _ := v.Document()
		findParents(&nested, rest, update)
		doc.Set(label, value.Doc(nested))
	}
}
