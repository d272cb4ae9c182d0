package flatdoc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDatabase implements Database over a pgx connection pool.
// Path patterns are evaluated with the native "~" operator and the data
// column is JSONB.
type PostgresDatabase struct {
	pool *pgxpool.Pool
}

// NewPostgresDatabase wraps an existing pool. The caller keeps ownership
// of pool configuration; Close closes the pool.
func NewPostgresDatabase(pool *pgxpool.Pool) *PostgresDatabase {
	return &PostgresDatabase{pool: pool}
}

// OpenPostgres connects using a connection string or URL
func OpenPostgres(ctx context.Context, dsn string) (*PostgresDatabase, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, WithContext(ErrStoreUnavailable, map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return &PostgresDatabase{pool: pool}, nil
}

func (d *PostgresDatabase) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := d.pool.Exec(ctx, sql, args...)
	return mapPostgresError(err)
}

func (d *PostgresDatabase) ExecBatch(ctx context.Context, stmts []Statement) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return mapPostgresError(err)
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
			_ = tx.Rollback(ctx)
			return mapPostgresError(err)
		}
	}
	return mapPostgresError(tx.Commit(ctx))
}

func (d *PostgresDatabase) Query(ctx context.Context, sql string, args ...interface{}) ([]Row, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Name, &r.Path, &r.Data); err != nil {
			return nil, mapPostgresError(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}
	return out, nil
}

func (d *PostgresDatabase) ListBaseTables(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_type = 'BASE TABLE' ORDER BY table_name")
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapPostgresError(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (d *PostgresDatabase) Dialect() Dialect {
	return Dialect{
		Name:                 "postgres",
		DataColumnType:       "JSONB",
		MatchOperator:        "~",
		NumberedPlaceholders: true,
	}
}

func (d *PostgresDatabase) Ping(ctx context.Context) error {
	return mapPostgresError(d.pool.Ping(ctx))
}

func (d *PostgresDatabase) Close() error {
	d.pool.Close()
	return nil
}

// mapPostgresError translates pgx errors into the flatdoc taxonomy so
// callers can branch on sentinels instead of SQLSTATE codes
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01": // undefined_table
			return WithContext(ErrNoCollection, map[string]interface{}{
				"detail": pgErr.Message,
			})
		case pgErr.Code == "23505" || pgErr.Code == "40001" || pgErr.Code == "40P01":
			return WithContext(ErrStoreConflict, map[string]interface{}{
				"code":   pgErr.Code,
				"detail": pgErr.Message,
			})
		case strings.HasPrefix(pgErr.Code, "08"): // connection exceptions
			return WithContext(ErrStoreUnavailable, map[string]interface{}{
				"code":   pgErr.Code,
				"detail": pgErr.Message,
			})
		}
		return err
	}
	if pgconn.Timeout(err) {
		return WithContext(ErrStoreUnavailable, map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return err
}
