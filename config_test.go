package flatdoc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid sqlite", Config{Driver: DriverSQLite, DSN: ":memory:"}, false},
		{"valid postgres", Config{Driver: DriverPostgres, DSN: "postgres://localhost/flatdoc"}, false},
		{"with cache", Config{Driver: DriverSQLite, DSN: ":memory:", RedisAddr: "localhost:6379", CacheTTL: time.Minute}, false},
		{"missing driver", Config{DSN: ":memory:"}, true},
		{"unknown driver", Config{Driver: "oracle", DSN: "x"}, true},
		{"missing dsn", Config{Driver: DriverSQLite}, true},
		{"negative ttl", Config{Driver: DriverSQLite, DSN: ":memory:", CacheTTL: -time.Second}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if d := db.Dialect(); d.Name != "sqlite" || d.MatchOperator != "REGEXP" {
		t.Errorf("unexpected dialect: %+v", d)
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	if _, err := Open(context.Background(), Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
