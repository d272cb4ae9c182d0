package flatdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// SnapshotSink receives one serialized snapshot per collection
type SnapshotSink interface {
	Write(ctx context.Context, key string, data []byte) error
}

// FilesystemSink writes snapshots under a base directory
type FilesystemSink struct {
	dir string
}

func NewFilesystemSink(dir string) *FilesystemSink {
	return &FilesystemSink{dir: dir}
}

func (s *FilesystemSink) Write(ctx context.Context, key string, data []byte) error {
	if err := os.MkdirAll(s.dir, DefaultDirPermissions); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, key), data, DefaultFilePermissions)
}

// snapshotRow is the JSONL line format: one stored row per line, data kept
// as raw JSON
type snapshotRow struct {
	Name string          `json:"name"`
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// Snapshotter dumps collections from the relational store to a sink as
// JSONL, one file per collection. It is auxiliary tooling: the only
// consumer of ListBaseTables.
type Snapshotter struct {
	db     Database
	sink   SnapshotSink
	logger Logger
}

// NewSnapshotter creates a snapshotter writing to sink
func NewSnapshotter(db Database, sink SnapshotSink) *Snapshotter {
	return &Snapshotter{
		db:     db,
		sink:   sink,
		logger: &NoOpLogger{},
	}
}

// SetLogger updates the logger for this snapshotter
func (s *Snapshotter) SetLogger(logger Logger) {
	s.logger = logger
}

// SnapshotCollection writes every row of one collection to the sink as
// "<collection>.jsonl"
func (s *Snapshotter) SnapshotCollection(ctx context.Context, collection string) error {
	stmt := NewQueryBuilder(s.db.Dialect()).BuildScan(collection)
	rows, err := s.db.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		line := snapshotRow{Name: row.Name, Path: row.Path, Data: json.RawMessage(row.Data)}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	if err := s.sink.Write(ctx, collection+".jsonl", buf.Bytes()); err != nil {
		return err
	}
	s.logger.Info("snapshot written", "collection", collection, "rows", len(rows))
	return nil
}

// SnapshotAll snapshots every base table in the store
func (s *Snapshotter) SnapshotAll(ctx context.Context) error {
	tables, err := s.db.ListBaseTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := s.SnapshotCollection(ctx, table); err != nil {
			return err
		}
	}
	return nil
}
