package repositories

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// expectAffected turns a zero-row update or delete into pgx.ErrNoRows.
func expectAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(rowScanner, *T) error) ([]*T, error) {
	defer rows.Close()

	var out []*T
	for rows.Next() {
		item := new(T)
		if err := scan(rows, item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
