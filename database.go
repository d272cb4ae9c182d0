package flatdoc

import (
	"context"
	"strconv"
)

// Row is the persisted unit: one JSON leaf value addressed by (name, path).
// The pair is unique within a collection; nested structure exists only as
// distinct rows sharing path prefixes. Data holds the JSON encoding of
// exactly one leaf (scalar, null, or a degenerate empty container).
type Row struct {
	Name string
	Path string
	Data []byte
}

// Statement is one parameterized SQL statement ready for execution
type Statement struct {
	SQL  string
	Args []interface{}
}

// Dialect captures the SQL differences between supported relational engines
type Dialect struct {
	Name string

	// DataColumnType is the column type used for the data column
	DataColumnType string

	// MatchOperator is the engine's native regex match operator for the
	// path column ("~" for PostgreSQL, "REGEXP" for SQLite)
	MatchOperator string

	// NumberedPlaceholders selects "$1, $2, ..." over "?"
	NumberedPlaceholders bool
}

// Placeholder renders the i-th (1-based) statement placeholder
func (d Dialect) Placeholder(i int) string {
	if d.NumberedPlaceholders {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Database is the passive relational collaborator. Flatdoc never manages
// connections, pools or schemas beyond what this contract exposes; it only
// asks for statements to be executed and rows to be returned.
//
// ExecBatch must be all-or-nothing: either every statement is applied or
// none is. Query against a table that does not exist must fail with an
// error wrapping ErrNoCollection so reads of untouched collections can
// yield a null result instead of an error.
type Database interface {
	// Exec runs a single statement (DDL or DML)
	Exec(ctx context.Context, sql string, args ...interface{}) error

	// ExecBatch runs statements inside one transaction, atomically
	ExecBatch(ctx context.Context, stmts []Statement) error

	// Query runs a read query and returns the matching rows in order
	Query(ctx context.Context, sql string, args ...interface{}) ([]Row, error)

	// ListBaseTables returns the names of existing base tables.
	// Used by auxiliary tooling such as snapshots, never by Set/Get.
	ListBaseTables(ctx context.Context) ([]string, error)

	// Dialect describes the engine's SQL flavor
	Dialect() Dialect

	// Ping verifies connectivity
	Ping(ctx context.Context) error

	// Close releases the underlying connections
	Close() error
}
