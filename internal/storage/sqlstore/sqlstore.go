// Package sqlstore provides the database/sql implementation of
// storage.Gateway. One generic Table serves every entity; the entity only
// contributes its table name, name column and constructor.
//
// Three drivers are registered by the blank imports below and selected by
// config.Storage.Driver:
//
//	sqlite3  mattn/go-sqlite3 (cgo)
//	sqlite   modernc.org/sqlite (pure Go)
//	pgx      jackc/pgx/v5 through its database/sql adapter
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/catalog/internal/config"
	"github.com/aanand-mishra/catalog/internal/types"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Store owns the connection pool shared by every Table.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database described by cfg and creates the
// persons and genres tables if they do not exist yet.
func Open(ctx context.Context, cfg config.Storage) (*Store, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: open db: %w", err)
	}

	if isSQLite(cfg.Driver) {
		// SQLite allows one writer at a time; a single connection avoids
		// SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleTime > 0 {
			db.SetConnMaxIdleTime(cfg.MaxIdleTime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore.Open: ping: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying pool, for health checks and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) createTables(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if !isSQLite(s.driver) {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	for _, t := range []struct{ table, column string }{
		{personSchema.Table, personSchema.NameColumn},
		{genreSchema.Table, genreSchema.NameColumn},
	} {
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (%s, %s TEXT NOT NULL)",
			t.table, idColumn, t.column,
		)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlstore.Open: create table %s: %w", t.table, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if isSQLite(s.driver) {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSQLite(driver string) bool {
	return driver == config.DriverSQLite3 || driver == config.DriverSQLite
}

// Schema describes how an entity maps onto a table with an id column and
// a single text name column.
type Schema[T any] struct {
	Table      string
	NameColumn string
	New        func(id int64, name string) T
}

var personSchema = Schema[types.Person]{
	Table:      "persons",
	NameColumn: "full_name",
	New: func(id int64, name string) types.Person {
		return types.Person{ID: id, FullName: name}
	},
}

var genreSchema = Schema[types.Genre]{
	Table:      "genres",
	NameColumn: "name",
	New: func(id int64, name string) types.Genre {
		return types.Genre{ID: id, Name: name}
	},
}

// Persons returns the gateway for the persons table.
func (s *Store) Persons() *Table[types.Person] { return NewTable(s, personSchema) }

// Genres returns the gateway for the genres table.
func (s *Store) Genres() *Table[types.Genre] { return NewTable(s, genreSchema) }
