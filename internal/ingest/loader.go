package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nbalake/internal/domain"
)

// Loader lands result sets in the warehouse as all-VARCHAR tables with
// full-refresh semantics.
type Loader struct {
	duck *sql.DB
}

// NewLoader creates a Loader writing to the given DuckDB handle.
func NewLoader(duck *sql.DB) *Loader {
	return &Loader{duck: duck}
}

// ReplaceTable drops and recreates schema.table from the result set.
// Column names are kept exactly as received; every column is VARCHAR.
// The whole load happens in one transaction, so a failed load leaves
// no partially written table behind.
func (l *Loader) ReplaceTable(ctx context.Context, schema, table string, rs *ResultSet) error {
	if len(rs.Headers) == 0 {
		return domain.ErrValidation("result set %s has no columns", rs.Name)
	}

	cols := make([]string, len(rs.Headers))
	placeholders := make([]string, len(rs.Headers))
	for i, h := range rs.Headers {
		cols[i] = quoteIdent(h) + " VARCHAR"
		placeholders[i] = "?"
	}

	relation := quoteIdent(schema) + "." + quoteIdent(table)

	tx, err := l.duck.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load of %s: %w", relation, err)
	}
	defer func() { _ = tx.Rollback() }()

	ddl := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", relation, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", relation, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", relation, strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", relation, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rs.Rows {
		if len(row) != len(rs.Headers) {
			return domain.ErrValidation("row %d of %s has %d values, want %d",
				i, rs.Name, len(row), len(rs.Headers))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", i, relation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load of %s: %w", relation, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
