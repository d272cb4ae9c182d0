package flatdoc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

// SQLiteDatabase implements Database over modernc.org/sqlite. A ":memory:"
// DSN gives a zero-dependency store for tests and local development.
type SQLiteDatabase struct {
	db *sql.DB
}

// SQLite has no built-in REGEXP operator; register a deterministic scalar
// function backed by Go's regexp so "path REGEXP ?" works.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, sqliteRegexp)
}

var sqliteRegexpCache sync.Map // pattern string -> *regexp.Regexp

func sqliteRegexp(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
	}
	text, ok := args[1].(string)
	if !ok {
		// non-text operands never match
		return int64(0), nil
	}

	var re *regexp.Regexp
	if cached, hit := sqliteRegexpCache.Load(pattern); hit {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("regexp: %w", err)
		}
		sqliteRegexpCache.Store(pattern, compiled)
		re = compiled
	}

	if re.MatchString(text) {
		return int64(1), nil
	}
	return int64(0), nil
}

// OpenSQLite opens (or creates) a SQLite database at the given DSN
func OpenSQLite(dsn string) (*SQLiteDatabase, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, WithContext(ErrStoreUnavailable, map[string]interface{}{
			"reason": err.Error(),
		})
	}
	// One connection keeps in-memory databases visible across calls and
	// serializes write transactions
	db.SetMaxOpenConns(1)
	return &SQLiteDatabase{db: db}, nil
}

func (d *SQLiteDatabase) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := d.db.ExecContext(ctx, query, args...)
	return mapSQLiteError(err)
}

func (d *SQLiteDatabase) ExecBatch(ctx context.Context, stmts []Statement) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteError(err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			_ = tx.Rollback()
			return mapSQLiteError(err)
		}
	}
	return mapSQLiteError(tx.Commit())
}

func (d *SQLiteDatabase) Query(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Name, &r.Path, &r.Data); err != nil {
			return nil, mapSQLiteError(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return out, nil
}

func (d *SQLiteDatabase) ListBaseTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapSQLiteError(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (d *SQLiteDatabase) Dialect() Dialect {
	return Dialect{
		Name:                 "sqlite",
		DataColumnType:       "TEXT",
		MatchOperator:        "REGEXP",
		NumberedPlaceholders: false,
	}
}

func (d *SQLiteDatabase) Ping(ctx context.Context) error {
	return mapSQLiteError(d.db.PingContext(ctx))
}

func (d *SQLiteDatabase) Close() error {
	return d.db.Close()
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return WithContext(ErrNoCollection, map[string]interface{}{
			"detail": msg,
		})
	case strings.Contains(msg, "constraint failed"):
		return WithContext(ErrStoreConflict, map[string]interface{}{
			"detail": msg,
		})
	case strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy"):
		return WithContext(ErrStoreUnavailable, map[string]interface{}{
			"detail": msg,
		})
	}
	return err
}
