package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Row is one result row keyed by column name. Values are normalized so that
// every row is JSON-serializable as-is.
type Row map[string]any

// WriteResult reports the outcome of an INSERT/UPDATE/DELETE. LastInsertID is
// nil when the driver does not surface one (the Postgres wire protocol does
// not; use RETURNING through Get instead).
type WriteResult struct {
	LastInsertID *int64 `json:"insertedId"`
	RowsAffected int64  `json:"rowsAffected"`
}

// Gateway is the single choke point for raw SQL. Every error it returns wraps
// the driver error, so callers classify with errors helpers such as
// IsUniqueViolation rather than assuming a failure aborts them.
type Gateway struct {
	sql *sql.DB
}

// Select runs a query expected to return zero or more rows.
func (g *Gateway) Select(ctx context.Context, query string, args ...any) ([]Row, error) {
	if g == nil || g.sql == nil {
		return nil, ErrNotConnected
	}

	rows, err := g.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Get runs a query and returns the first row, or nil when there is none.
func (g *Gateway) Get(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := g.Select(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exec runs a write statement.
func (g *Gateway) Exec(ctx context.Context, query string, args ...any) (WriteResult, error) {
	if g == nil || g.sql == nil {
		return WriteResult{}, ErrNotConnected
	}

	res, err := g.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return WriteResult{}, fmt.Errorf("exec: %w", err)
	}

	out := WriteResult{}
	if affected, err := res.RowsAffected(); err == nil {
		out.RowsAffected = affected
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		out.LastInsertID = &id
	}
	return out, nil
}

// normalizeValue coerces driver values into plain JSON-serializable Go values,
// recursively through nested slices and maps. Byte slices become strings;
// 64-bit integers are kept as int64 so identifiers round-trip exactly with no
// float53 truncation.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeValue(t[k])
		}
		return t
	default:
		return v
	}
}
