package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"healthease/internal/repository"
)

// collection maps one table to one entity type. Every row is the entity
// marshalled as JSON; rowid keeps insertion order for listing.
type collection[T any] struct {
	db    *DB
	table string
	idOf  func(*T) string
}

func newCollection[T any](db *DB, table string, idOf func(*T) string) *collection[T] {
	return &collection[T]{db: db, table: table, idOf: idOf}
}

func (c *collection[T]) create(ctx context.Context, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc,
		updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')`, c.table)
	if _, err := c.db.db.ExecContext(ctx, query, c.idOf(v), string(doc)); err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

func (c *collection[T]) get(ctx context.Context, id string) (*T, error) {
	var doc string
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE id = ?`, c.table)
	err := c.db.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.table, err)
	}
	return decode[T](c.table, doc)
}

func (c *collection[T]) update(ctx context.Context, v *T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.table, err)
	}
	query := fmt.Sprintf(`UPDATE %s SET doc = ?,
		updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now') WHERE id = ?`, c.table)
	res, err := c.db.db.ExecContext(ctx, query, string(doc), c.idOf(v))
	if err != nil {
		return fmt.Errorf("update %s: %w", c.table, err)
	}
	return requireRow(res)
}

func (c *collection[T]) delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c.table)
	res, err := c.db.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.table, err)
	}
	return requireRow(res)
}

func (c *collection[T]) list(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY rowid`, c.table)
	rows, err := c.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		v, err := decode[T](c.table, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func decode[T any](table, doc string) (*T, error) {
	v := new(T)
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
