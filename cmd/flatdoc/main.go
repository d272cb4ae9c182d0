// Flatdoc - JSON documents in a flat relational table
//
// Store and fetch JSON values addressed by path expressions, backed by
// PostgreSQL or SQLite.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/flatdocdb/flatdoc"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "set":
		runSet(os.Args[2:])
	case "get":
		runGet(os.Args[2:])
	case "tables":
		runTables(os.Args[2:])
	case "snapshot":
		runSnapshot(os.Args[2:])
	case "help", "--help", "-h":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(2)
	}
}

func printHelp() {
	fmt.Println(`Flatdoc - JSON documents in a flat relational table

Usage:
  flatdoc set <address> <json>     Write a JSON value at an address
  flatdoc get <address>            Read the value an address matches
  flatdoc tables                   List existing collections
  flatdoc snapshot [--out dir]     Dump all collections as JSONL

Common flags:
  --driver string   "sqlite" or "postgres" (default "sqlite")
  --dsn string      Connection string or SQLite path (default "flatdoc.db")`)
}

func storeFlags(fs *flag.FlagSet) (driver, dsn *string) {
	driver = fs.String("driver", flatdoc.DriverSQLite, `"sqlite" or "postgres"`)
	dsn = fs.String("dsn", "flatdoc.db", "connection string or SQLite path")
	return driver, dsn
}

func openStore(ctx context.Context, driver, dsn string) (flatdoc.Database, *flatdoc.Store) {
	db, err := flatdoc.Open(ctx, flatdoc.Config{Driver: driver, DSN: dsn})
	if err != nil {
		fatal(err)
	}
	logger, err := flatdoc.NewDevelopmentZapLogger()
	if err != nil {
		fatal(err)
	}
	return db, flatdoc.NewStoreWithLogger(db, logger)
}

func runSet(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	driver, dsn := storeFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fatal(fmt.Errorf("set expects <address> <json>"))
	}

	var value interface{}
	if err := json.Unmarshal([]byte(fs.Arg(1)), &value); err != nil {
		fatal(fmt.Errorf("value is not valid JSON: %w", err))
	}

	ctx := context.Background()
	db, store := openStore(ctx, *driver, *dsn)
	defer db.Close()

	if err := store.Set(ctx, fs.Arg(0), value); err != nil {
		fatal(err)
	}
}

func runGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	driver, dsn := storeFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fatal(fmt.Errorf("get expects <address>"))
	}

	ctx := context.Background()
	db, store := openStore(ctx, *driver, *dsn)
	defer db.Close()

	value, err := store.Get(ctx, fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func runTables(args []string) {
	fs := flag.NewFlagSet("tables", flag.ExitOnError)
	driver, dsn := storeFlags(fs)
	_ = fs.Parse(args)

	ctx := context.Background()
	db, _ := openStore(ctx, *driver, *dsn)
	defer db.Close()

	tables, err := db.ListBaseTables(ctx)
	if err != nil {
		fatal(err)
	}
	for _, table := range tables {
		fmt.Println(table)
	}
}

func runSnapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	driver, dsn := storeFlags(fs)
	out := fs.String("out", "./snapshots", "output directory")
	_ = fs.Parse(args)

	ctx := context.Background()
	db, _ := openStore(ctx, *driver, *dsn)
	defer db.Close()

	snap := flatdoc.NewSnapshotter(db, flatdoc.NewFilesystemSink(*out))
	if err := snap.SnapshotAll(ctx); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "flatdoc:", err)
	os.Exit(1)
}
