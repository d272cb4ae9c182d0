// Package flatdoc stores arbitrary JSON documents in a flat relational
// table and reads them back through a small JSONPath-like addressing
// language.
//
// # Overview
//
// Every value written is decomposed into leaf rows of (name, path, data):
// the name column identifies one logical record in a collection, the path
// column holds the canonically encoded location of one leaf inside it, and
// data holds that leaf as JSON. Reads locate rows by row-key equality or a
// pattern match over the path column and reassemble them into a single JSON
// value, inferring whether the result is an array or an object from the row
// names.
//
// # Quick Start
//
// Local development against SQLite:
//
//	db, _ := flatdoc.OpenSQLite("flatdoc.db")
//	store := flatdoc.NewStore(db)
//	ctx := context.Background()
//
//	store.Set(ctx, "users[0]", map[string]interface{}{"name": "John", "age": 30})
//	store.Set(ctx, "users[1]", map[string]interface{}{"name": "Jane", "age": 25})
//
//	names, _ := store.Get(ctx, "users[*].name") // ["John", "Jane"]
//
// Production setup with PostgreSQL, Redis caching and observability:
//
//	db, _ := flatdoc.OpenPostgres(ctx, os.Getenv("DATABASE_URL"))
//	logger, _ := flatdoc.NewProductionZapLogger()
//	metrics := flatdoc.NewPrometheusMetrics(prometheus.DefaultRegisterer)
//	store := flatdoc.NewStoreWithObservability(db, logger, metrics)
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cached := flatdoc.NewCachedStore(store, redisClient, 5*time.Minute)
//
// # Addressing
//
// The first operation of an expression names the collection (a table,
// created lazily on first write). The second, when present, is the row key.
// Everything after it addresses into the row's JSON value:
//
//	users              whole collection
//	users[0]           one record
//	users[0].name      one field
//	users[*].name      the field across all records
//	config["api key"]  quoted members for non-identifier names
//
// Wildcards match exactly one level; deep descent and filters are not
// supported. Writing a bare scalar with no row key stores it under the
// reserved ScalarKey row.
//
// # Consistency
//
// One Set call is one transaction: all leaf upserts land atomically or not
// at all. Concurrent writers serialize per (name, path) through the primary
// key, last commit wins. Reads see either the state before or after a
// concurrent Set, never a mix from the same call.
//
// # Snapshots
//
// Snapshotter dumps collections as JSONL through a SnapshotSink; sinks for
// the local filesystem, AWS S3 (and S3-compatible endpoints) and Google
// Cloud Storage are provided.
package flatdoc
