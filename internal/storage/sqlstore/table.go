package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/catalog/internal/storage"
)

// Table is the storage.Gateway for one entity table.
type Table[T any] struct {
	store  *Store
	schema Schema[T]

	listQuery   string
	findQuery   string
	insertQuery string
	updateQuery string
	deleteQuery string
}

var _ storage.Gateway[struct{}] = (*Table[struct{}])(nil)

// NewTable prepares the SQL text for schema once; every statement uses
// placeholders, user input never reaches the query string.
func NewTable[T any](s *Store, schema Schema[T]) *Table[T] {
	t, c := schema.Table, schema.NameColumn
	return &Table[T]{
		store:  s,
		schema: schema,

		listQuery: s.rebind(fmt.Sprintf(
			"SELECT id, %[2]s FROM %[1]s ORDER BY %[2]s ASC, id ASC", t, c)),
		findQuery: s.rebind(fmt.Sprintf(
			`SELECT id, %[2]s FROM %[1]s WHERE %[2]s LIKE ? ESCAPE '\' ORDER BY %[2]s ASC, id ASC`, t, c)),
		insertQuery: s.rebind(fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (?) RETURNING id", t, c)),
		updateQuery: s.rebind(fmt.Sprintf(
			"UPDATE %s SET %s = ? WHERE id = ? RETURNING id", t, c)),
		deleteQuery: s.rebind(fmt.Sprintf(
			"DELETE FROM %s WHERE id = ?", t)),
	}
}

func (t *Table[T]) op(name string) string {
	return t.schema.Table + "." + name
}

// ListAll returns every row ordered by name, then id.
func (t *Table[T]) ListAll(ctx context.Context) ([]T, error) {
	return t.query(ctx, t.op("ListAll"), t.listQuery)
}

// FindBySubstring matches with LIKE, so case sensitivity follows the
// store: ASCII case-insensitive on SQLite, case-sensitive on PostgreSQL.
// LIKE metacharacters in needle are matched literally.
func (t *Table[T]) FindBySubstring(ctx context.Context, needle string) ([]T, error) {
	return t.query(ctx, t.op("FindBySubstring"), t.findQuery, "%"+escapeLike(needle)+"%")
}

// Create inserts a row and returns it with the id chosen by the database.
func (t *Table[T]) Create(ctx context.Context, name string) (T, error) {
	var id int64
	if err := t.store.db.QueryRowContext(ctx, t.insertQuery, name).Scan(&id); err != nil {
		var zero T
		return zero, storage.Wrap(t.op("Create"), err)
	}
	return t.schema.New(id, name), nil
}

// Update overwrites the name of row id.
func (t *Table[T]) Update(ctx context.Context, id int64, name string) (T, error) {
	var zero T
	var got int64
	err := t.store.db.QueryRowContext(ctx, t.updateQuery, name, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s: id %d: %w", t.op("Update"), id, storage.ErrNotFound)
	}
	if err != nil {
		return zero, storage.Wrap(t.op("Update"), err)
	}
	return t.schema.New(got, name), nil
}

// Delete removes row id.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	res, err := t.store.db.ExecContext(ctx, t.deleteQuery, id)
	if err != nil {
		return storage.Wrap(t.op("Delete"), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storage.Wrap(t.op("Delete"), err)
	}
	if n == 0 {
		return fmt.Errorf("%s: id %d: %w", t.op("Delete"), id, storage.ErrNotFound)
	}
	return nil
}

func (t *Table[T]) query(ctx context.Context, op, query string, args ...any) ([]T, error) {
	rows, err := t.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	defer rows.Close()

	// Non-nil so that an empty table renders as "no records", not as a
	// missing value.
	records := make([]T, 0)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, storage.Wrap(op, fmt.Errorf("scan row: %w", err))
		}
		records = append(records, t.schema.New(id, name))
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(op, fmt.Errorf("rows iteration: %w", err))
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
