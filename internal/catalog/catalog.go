// Package catalog introspects a MySQL-compatible relational catalog and
// builds the initial relgraph.Graph, per spec.md §4.1 and §6.1.
//
// Queries run against information_schema the same way
// internal/storage/dolt's migrations probe for existing tables/columns,
// and transient failures (lock-wait timeouts against a live source) are
// retried with github.com/cenkalti/backoff/v4 the way
// internal/storage/dolt/store.go retries server-mode SQL errors -- but a
// catalog query that still fails after retry is fatal, per spec.md §7:
// the engine has nothing to synthesize without a catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/sem42198/mongo-migrator/internal/relgraph"
)

// ForeignKey is one FK column discovered on a table.
type ForeignKey struct {
	Column          string
	ReferencedTable string
}

// Source is the subset of catalog queries the Catalog Reader needs.
// Implementations back it with a live *sql.DB (using
// github.com/go-sql-driver/mysql or a Dolt-compatible driver) or a fake
// for tests; connection management itself is out of scope for this
// package (spec.md §1).
type Source interface {
	// SchemaName is the catalog/database name queries are scoped to.
	SchemaName() string

	// BaseTables lists base tables excluding views.
	BaseTables(ctx context.Context) ([]string, error)

	// PrimaryKey returns the primary-key column of table.
	PrimaryKey(ctx context.Context, table string) (string, error)

	// TableSize returns (data_length, row_count) for table. data_length
	// may be unavailable (0) on some engines; callers fall back to
	// 32*row_count.
	TableSize(ctx context.Context, table string) (dataLength, rowCount float64, err error)

	// ForeignKeys lists FK columns declared on table, each with the
	// table it references.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)

	// FKCounts returns the count of distinct values and the count of
	// NULLs in table.column.
	FKCounts(ctx context.Context, table, column string) (distinct, nulls float64, err error)
}

// Read builds the initial Graph: one node per base table (reversed=false,
// reference=false on every edge, N0=N=D=row_count on every node, empty
// Path), then one edge per foreign key.
func Read(ctx context.Context, src Source) (*relgraph.Graph, error) {
	tables, err := retry(ctx, func() ([]string, error) { return src.BaseTables(ctx) })
	if err != nil {
		return nil, fmt.Errorf("catalog: listing base tables: %w", err)
	}

	g := relgraph.New(relgraph.Source{SchemaName: src.SchemaName()})
	nodeByTable := make(map[string]relgraph.NodeID, len(tables))

	for _, table := range tables {
		pk, err := retry(ctx, func() (string, error) { return src.PrimaryKey(ctx, table) })
		if err != nil {
			return nil, fmt.Errorf("catalog: primary key of %s: %w", table, err)
		}

		dataLength, rowCount, err := retryPair(ctx, func() (float64, float64, error) { return src.TableSize(ctx, table) })
		if err != nil {
			return nil, fmt.Errorf("catalog: size of %s: %w", table, err)
		}

		rowSize := 32.0
		if rowCount > 0 && dataLength > 0 {
			rowSize = dataLength / rowCount
		}

		n := g.AddNode(table, pk, rowSize, rowCount)
		nodeByTable[table] = n.ID
	}

	for _, table := range tables {
		fks, err := retry(ctx, func() ([]ForeignKey, error) { return src.ForeignKeys(ctx, table) })
		if err != nil {
			return nil, fmt.Errorf("catalog: foreign keys of %s: %w", table, err)
		}

		owningID := nodeByTable[table]
		for _, fk := range fks {
			referencedID, ok := nodeByTable[fk.ReferencedTable]
			if !ok {
				return nil, fmt.Errorf("catalog: %s.%s references unknown table %q", table, fk.Column, fk.ReferencedTable)
			}
			distinct, nulls, err := retryPair(ctx, func() (float64, float64, error) {
				return src.FKCounts(ctx, table, fk.Column)
			})
			if err != nil {
				return nil, fmt.Errorf("catalog: FK counts for %s.%s: %w", table, fk.Column, err)
			}
			// A foreign key points FROM the referenced (parent) table TO the
			// owning (child) table in the initial graph: the child embeds
			// under the parent until the search decides otherwise.
			g.AddEdge(referencedID, owningID, fk.Column, table, distinct, nulls)
		}
	}

	return g, nil
}

func retry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	var result T
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	err := backoff.Retry(func() error {
		v, err := op()
		if err != nil {
			return err
		}
		result = v
		return nil
	}, backoff.WithMaxRetries(bo, 3))
	return result, err
}

func retryPair[A, B any](ctx context.Context, op func() (A, B, error)) (A, B, error) {
	var a A
	var b B
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	err := backoff.Retry(func() error {
		va, vb, err := op()
		if err != nil {
			return err
		}
		a, b = va, vb
		return nil
	}, backoff.WithMaxRetries(bo, 3))
	return a, b, err
}
