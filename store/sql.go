package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/gopdm"
)

// Dialect selects the placeholder style of the SQL driver.
type Dialect int

const (
	// SQLite and MySQL style "?" placeholders.
	DialectQuestion Dialect = iota
	// PostgreSQL style "$1" placeholders (pgx, lib/pq).
	DialectDollar
)

// DialectFor guesses the dialect from a database/sql driver name.
func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return DialectDollar
	}
	return DialectQuestion
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore keeps graphs in one table: uuid (primary key), class and data.
type SQLStore struct {
	db      *sql.DB
	s       *gopdm.Serializer
	table   string
	dialect Dialect
	log     *zap.Logger
}

// NewSQLStore uses db with the given table. It panics on an invalid table
// name.
func NewSQLStore(db *sql.DB, s *gopdm.Serializer, table string, dialect Dialect) *SQLStore {
	if db == nil || s == nil {
		panic("store.NewSQLStore: db and serializer must not be nil")
	}
	if !tableName.MatchString(table) {
		panic("store.NewSQLStore: invalid table name " + table)
	}
	return &SQLStore{db: db, s: s, table: table, dialect: dialect, log: gopdm.Logger()}
}

// WithLogger replaces the logger used for debug traces.
func (q *SQLStore) WithLogger(l *zap.Logger) *SQLStore {
	q.log = l
	return q
}

// rebind rewrites "?" placeholders for the store's dialect.
func (q *SQLStore) rebind(query string) string {
	if q.dialect != DialectDollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema creates the table when missing.
func (q *SQLStore) EnsureSchema(ctx context.Context) error {
	stmt := "CREATE TABLE IF NOT EXISTS " + q.table + " (uuid TEXT PRIMARY KEY, class TEXT NOT NULL, data TEXT NOT NULL)"
	if _, err := q.db.ExecContext(ctx, stmt); err != nil {
		return ioFailure("create table", err)
	}
	return nil
}

func (q *SQLStore) Save(ctx context.Context, root gopdm.Handle) error {
	text, err := q.s.WithType(gopdm.DataFull).WithUUIDs(true).WriteObjectToString(root)
	if err != nil {
		return err
	}
	o := root.AsObject()
	stmt := q.rebind("INSERT INTO " + q.table + " (uuid, class, data) VALUES (?, ?, ?) " +
		"ON CONFLICT (uuid) DO UPDATE SET class = excluded.class, data = excluded.data")
	if _, err := q.db.ExecContext(ctx, stmt, o.UUID(), o.ClassKeyword(), text); err != nil {
		return ioFailure("insert", err)
	}
	q.log.Debug("stored object", zap.String("uuid", o.UUID()), zap.String("table", q.table))
	return nil
}

func (q *SQLStore) Load(ctx context.Context, id string) (gopdm.Handle, error) {
	var text string
	err := q.db.QueryRowContext(ctx, q.rebind("SELECT data FROM "+q.table+" WHERE uuid = ?"), id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, ioFailure("select", err)
	}
	return q.s.CreateObjectFromString(text)
}

func (q *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, q.rebind("DELETE FROM "+q.table+" WHERE uuid = ?"), id)
	if err != nil {
		return ioFailure("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioFailure("delete", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (q *SQLStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT uuid, class FROM "+q.table+" ORDER BY uuid")
	if err != nil {
		return nil, ioFailure("select", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UUID, &e.Class); err != nil {
			return nil, ioFailure("scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ioFailure("select", err)
	}
	return out, nil
}

func (q *SQLStore) Close() error { return q.db.Close() }
