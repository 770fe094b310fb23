package assistant

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Result holds an executed query's column names and stringified rows.
type Result struct {
	Columns []string
	Rows    [][]string
}

// IsReadOnly reports whether sql looks like a plain read: its first keyword
// is SELECT or WITH. This only refuses obvious writes up front; a
// data-modifying CTE starts with WITH and passes. The enforcement boundary
// is the read-only transaction RunQuery executes in.
func IsReadOnly(sql string) bool {
	s := strings.TrimSpace(sql)
	for strings.HasPrefix(s, "--") {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			return false
		}
		s = strings.TrimSpace(s[nl+1:])
	}
	fields := strings.Fields(strings.ToUpper(s))
	if len(fields) == 0 {
		return false
	}
	return fields[0] == "SELECT" || fields[0] == "WITH"
}

// RunQuery executes a query inside a read-only transaction and collects the
// result set. The transaction access mode is what holds the assistant to its
// read-only contract: a write smuggled past the keyword check, such as a
// data-modifying CTE, fails with a read-only violation instead of executing.
func RunQuery(ctx context.Context, pool *pgxpool.Pool, sql string) (*Result, error) {
	if !IsReadOnly(sql) {
		return nil, fmt.Errorf("only SELECT queries are allowed")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	res := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return res, nil
}

// Render writes the result as an aligned text table.
func (r *Result) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.Columns, "\t"))
	for _, row := range r.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
