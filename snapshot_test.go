package flatdoc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotter_SnapshotCollection(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "users[0]", map[string]interface{}{"name": "John", "age": float64(30)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "users[1]", map[string]interface{}{"name": "Jane"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	dir := t.TempDir()
	snap := NewSnapshotter(db, NewFilesystemSink(dir))
	if err := snap.SnapshotCollection(ctx, "users"); err != nil {
		t.Fatalf("SnapshotCollection failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "users.jsonl"))
	if err != nil {
		t.Fatalf("reading snapshot failed: %v", err)
	}

	var lines []snapshotRow
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var line snapshotRow
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("snapshot line is not valid JSON: %v", err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows in snapshot, got %d", len(lines))
	}
	if lines[0].Name != "0" || lines[0].Path != "age" || string(lines[0].Data) != "30" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
}

func TestSnapshotter_SnapshotAll(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "users[0]", map[string]interface{}{"name": "John"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "settings", map[string]interface{}{"theme": "dark"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	dir := t.TempDir()
	snap := NewSnapshotter(db, NewFilesystemSink(dir))
	if err := snap.SnapshotAll(ctx); err != nil {
		t.Fatalf("SnapshotAll failed: %v", err)
	}

	for _, name := range []string{"users.jsonl", "settings.jsonl"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected snapshot file %s: %v", name, err)
		}
	}
}

func TestFilesystemSink_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	sink := NewFilesystemSink(dir)

	if err := sink.Write(context.Background(), "x.jsonl", []byte("{}\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "x.jsonl"))
	if err != nil {
		t.Fatalf("reading written file failed: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("file content = %q", data)
	}
}
