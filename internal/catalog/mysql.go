package catalog

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "mysql" driver with database/sql.
	_ "github.com/go-sql-driver/mysql"
)

// MySQLSource implements Source against a live *sql.DB opened with
// github.com/go-sql-driver/mysql (or any wire-compatible driver).
// Opening the connection itself is a host concern (spec.md §1); callers
// pass an already-open *sql.DB scoped to one schema.
type MySQLSource struct {
	db     *sql.DB
	schema string
}

// NewMySQLSource wraps db, scoping catalog queries to schema.
func NewMySQLSource(db *sql.DB, schema string) *MySQLSource {
	return &MySQLSource{db: db, schema: schema}
}

func (s *MySQLSource) SchemaName() string { return s.schema }

func (s *MySQLSource) BaseTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
	`, s.schema)
	if err != nil {
		return nil, fmt.Errorf("querying base tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *MySQLSource) PrimaryKey(ctx context.Context, table string) (string, error) {
	var col string
	err := s.db.QueryRowContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ? AND column_key = 'PRI'
		LIMIT 1
	`, s.schema, table).Scan(&col)
	if err != nil {
		return "", fmt.Errorf("querying primary key of %s: %w", table, err)
	}
	return col, nil
}

func (s *MySQLSource) TableSize(ctx context.Context, table string) (float64, float64, error) {
	var dataLength sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT data_length
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`, s.schema, table).Scan(&dataLength)
	if err != nil {
		return 0, 0, fmt.Errorf("querying data length of %s: %w", table, err)
	}

	var rowCount float64
	// information_schema.tables.table_rows is an estimate on InnoDB; an
	// exact COUNT(*) matches the original prototype's NUM_ROWS_SQL and
	// is what the cost model's accuracy depends on.
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table)).Scan(&rowCount); err != nil {
		return 0, 0, fmt.Errorf("counting rows of %s: %w", table, err)
	}

	return dataLength.Float64, rowCount, nil
}

func (s *MySQLSource) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, referenced_table_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
	`, s.schema, table)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable); err != nil {
			return nil, fmt.Errorf("scanning foreign key of %s: %w", table, err)
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (s *MySQLSource) FKCounts(ctx context.Context, table, column string) (float64, float64, error) {
	var distinct float64
	q := fmt.Sprintf("SELECT COUNT(DISTINCT `%s`) FROM `%s`", column, table)
	if err := s.db.QueryRowContext(ctx, q).Scan(&distinct); err != nil {
		return 0, 0, fmt.Errorf("counting distinct values of %s.%s: %w", table, column, err)
	}

	var nulls float64
	q = fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE `%s` IS NULL", table, column)
	if err := s.db.QueryRowContext(ctx, q).Scan(&nulls); err != nil {
		return 0, 0, fmt.Errorf("counting null values of %s.%s: %w", table, column, err)
	}

	return distinct, nulls, nil
}
