package flatdoc

import (
	"context"
	"sync"
	"time"
)

// Store is the document-store facade. It owns no state beyond the relational
// collaborator and a small cache of collections whose DDL already ran; every
// Set and Get is a sequential pipeline of compile, build, execute, assemble.
type Store struct {
	db      Database
	builder *QueryBuilder
	logger  Logger
	metrics Metrics

	mu      sync.Mutex
	created map[string]struct{}
}

// NewStore creates a new store with no-op logger and metrics
func NewStore(db Database) *Store {
	return &Store{
		db:      db,
		builder: NewQueryBuilder(db.Dialect()),
		logger:  &NoOpLogger{},
		metrics: &NoOpMetrics{},
		created: make(map[string]struct{}),
	}
}

// NewStoreWithLogger creates a new store with a custom logger
func NewStoreWithLogger(db Database, logger Logger) *Store {
	s := NewStore(db)
	s.logger = logger
	return s
}

// NewStoreWithObservability creates a new store with logging and metrics
func NewStoreWithObservability(db Database, logger Logger, metrics Metrics) *Store {
	s := NewStore(db)
	s.logger = logger
	s.metrics = metrics
	return s
}

// SetLogger updates the logger for this store
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetMetrics updates the metrics collector for this store
func (s *Store) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// DB exposes the relational collaborator for auxiliary tooling such as
// snapshots. Set and Get never need it directly.
func (s *Store) DB() Database {
	return s.db
}

// Set persists value at the addressing expression, decomposing it into one
// upsert per leaf and executing the batch in a single transaction. The
// collection table is created lazily on first write. Partial application is
// never observable: either every leaf of the call lands or none does.
func (s *Store) Set(ctx context.Context, address string, value interface{}) error {
	opID := NewOperationID()
	start := time.Now()

	addr, err := CompileAddress(address)
	if err != nil {
		s.metrics.Increment(MetricSetError)
		return err
	}

	normalized, err := normalizeJSON(value)
	if err != nil {
		s.metrics.Increment(MetricSetError)
		return err
	}

	stmts, err := s.builder.BuildWrite(addr, normalized)
	if err != nil {
		s.metrics.Increment(MetricSetError)
		return err
	}

	if err := s.ensureCollection(ctx, addr.Collection); err != nil {
		s.metrics.Increment(MetricSetError)
		s.logger.Error("create collection failed",
			"op_id", opID, "collection", addr.Collection, "error", err)
		return err
	}

	if err := s.db.ExecBatch(ctx, stmts); err != nil {
		s.metrics.Increment(MetricSetError)
		s.logger.Error("set failed",
			"op_id", opID, "collection", addr.Collection, "error", err)
		return err
	}

	s.metrics.Increment(MetricSetSuccess)
	s.metrics.Histogram(MetricSetLeaves, float64(len(stmts)))
	s.metrics.Timing(MetricSetDuration, time.Since(start))
	s.logger.Debug("set",
		"op_id", opID,
		"collection", addr.Collection,
		"row_key", addr.RowKey,
		"leaves", len(stmts),
	)
	return nil
}

// Get reads the JSON value the addressing expression matches, or nil when
// nothing matches. Reading a collection that was never written is not an
// error; it yields nil.
func (s *Store) Get(ctx context.Context, address string) (interface{}, error) {
	opID := NewOperationID()
	start := time.Now()

	addr, err := CompileAddress(address)
	if err != nil {
		s.metrics.Increment(MetricGetError)
		return nil, err
	}

	stmt, err := s.builder.BuildRead(addr)
	if err != nil {
		s.metrics.Increment(MetricGetError)
		return nil, err
	}

	rows, err := s.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		if IsNoCollection(err) {
			s.metrics.Increment(MetricGetSuccess)
			return nil, nil
		}
		s.metrics.Increment(MetricGetError)
		s.logger.Error("get failed",
			"op_id", opID, "collection", addr.Collection, "error", err)
		return nil, err
	}

	result, err := Assemble(rows, addr.SubPath)
	if err != nil {
		s.metrics.Increment(MetricGetError)
		return nil, err
	}

	s.metrics.Increment(MetricGetSuccess)
	s.metrics.Histogram(MetricGetRows, float64(len(rows)))
	s.metrics.Timing(MetricGetDuration, time.Since(start))
	s.logger.Debug("get",
		"op_id", opID,
		"collection", addr.Collection,
		"row_key", addr.RowKey,
		"rows", len(rows),
	)
	return result, nil
}

func (s *Store) ensureCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	_, done := s.created[collection]
	s.mu.Unlock()
	if done {
		return nil
	}

	if err := s.db.Exec(ctx, s.builder.CreateCollection(collection)); err != nil {
		return err
	}

	s.mu.Lock()
	s.created[collection] = struct{}{}
	s.mu.Unlock()
	return nil
}
