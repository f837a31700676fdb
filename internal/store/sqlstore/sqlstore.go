// Package sqlstore keeps collections in SQLite or PostgreSQL, one table per
// collection with the document stored as JSON text next to its id.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"synergy/internal/store"
)

// DBType represents the type of database
type DBType string

const (
	SQLite   DBType = "sqlite3"
	Postgres DBType = "postgres"
)

// Store is an open SQL database holding any number of collections.
type Store struct {
	db     *sql.DB
	dbType DBType
}

// Open connects with the given driver ("sqlite3" or "postgres") and
// connection string.
func Open(ctx context.Context, driverName, connStr string) (*Store, error) {
	dbType := DBType(driverName)
	if dbType != SQLite && dbType != Postgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driverName)
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if dbType == SQLite {
		// One connection serialises writers and keeps ":memory:" databases
		// shared across calls.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, classify(err))
	}
	return &Store{db: db, dbType: dbType}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.dbType == SQLite {
		return query
	}
	var result strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&result, "$%d", argNum)
			argNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// Collection is a store.Collection backed by one table.
type Collection[T any] struct {
	s     *Store
	table string
}

// NewCollection creates the table for name if needed.
func NewCollection[T any](ctx context.Context, s *Store, name string) (*Collection[T], error) {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT PRIMARY KEY,
		doc TEXT NOT NULL
	)`, name)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, classify(err))
	}
	return &Collection[T]{s: s, table: name}, nil
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	rows, err := c.s.db.QueryContext(ctx, "SELECT doc FROM "+c.table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, classify(err))
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		doc, err := store.DecodeDoc[T]([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c.table, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, classify(err))
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	var raw string
	err := c.s.db.QueryRowContext(ctx, c.s.rebind("SELECT doc FROM "+c.table+" WHERE id = ?"), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %d: %w", c.table, id, store.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("get %s %d: %w", c.table, id, classify(err))
	}
	return store.DecodeDoc[T]([]byte(raw))
}

func (c *Collection[T]) Insert(ctx context.Context, docs ...T) error {
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.table, classify(err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, c.s.rebind("INSERT INTO "+c.table+" (id, doc) VALUES (?, ?)"))
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.table, classify(err))
	}
	defer stmt.Close()

	for _, d := range docs {
		raw, id, err := store.EncodeDoc(d)
		if err != nil {
			return fmt.Errorf("insert %s: %w", c.table, err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(raw)); err != nil {
			return fmt.Errorf("insert %s %d: %w", c.table, id, classify(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert %s: %w", c.table, classify(err))
	}
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id int64, fields map[string]any) (T, error) {
	var zero T
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.table, id, classify(err))
	}
	defer tx.Rollback()

	query := "SELECT doc FROM " + c.table + " WHERE id = ?"
	if c.s.dbType == Postgres {
		query += " FOR UPDATE"
	}
	var raw string
	err = tx.QueryRowContext(ctx, c.s.rebind(query), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %d: %w", c.table, id, store.ErrNotFound)
	}
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.table, id, classify(err))
	}

	merged, doc, err := store.MergeDoc[T]([]byte(raw), fields)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.table, id, err)
	}
	if _, err := tx.ExecContext(ctx, c.s.rebind("UPDATE "+c.table+" SET doc = ? WHERE id = ?"), string(merged), id); err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.table, id, classify(err))
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("update %s %d: %w", c.table, id, classify(err))
	}
	return doc, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	result, err := c.s.db.ExecContext(ctx, c.s.rebind("DELETE FROM "+c.table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.table, id, classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.table, id, classify(err))
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", c.table, id, store.ErrNotFound)
	}
	return nil
}

func (c *Collection[T]) MaxID(ctx context.Context) (int64, error) {
	var maxID int64
	if err := c.s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM "+c.table).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("max id %s: %w", c.table, classify(err))
	}
	return maxID, nil
}

// classify tags driver errors with the matching store sentinel.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %v", store.ErrDuplicateID, err)
		case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked ||
			sqliteErr.Code == sqlite3.ErrCantOpen:
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %v", store.ErrDuplicateID, err)
		case pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57":
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}
	return err
}
