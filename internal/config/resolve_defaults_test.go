package config

import (
	"os"
	"testing"
)

func unsetStoreEnv() {
	_ = os.Unsetenv("ASSISTANT_DB_DRIVER")
	_ = os.Unsetenv("ASSISTANT_POSTGRES_DSN")
	_ = os.Unsetenv("ASSISTANT_SQLITE_PATH")
}

func TestResolveDefaultsSQLiteWithoutDSN(t *testing.T) {
	unsetStoreEnv()
	defer unsetStoreEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.SQLitePath != "assistant.db" {
		t.Fatalf("unexpected mapping: %s %s", cfg.DBDriver, cfg.SQLitePath)
	}
}

func TestResolveDefaultsPostgresWhenDSNSet(t *testing.T) {
	unsetStoreEnv()
	_ = os.Setenv("ASSISTANT_POSTGRES_DSN", "postgres://localhost:5432/assistant")
	defer unsetStoreEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("auto driver with DSN, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsPostgresRequiresDSN(t *testing.T) {
	unsetStoreEnv()
	_ = os.Setenv("ASSISTANT_DB_DRIVER", "postgres")
	defer unsetStoreEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for postgres driver without DSN")
	}
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	unsetStoreEnv()
	_ = os.Setenv("ASSISTANT_DB_DRIVER", "spanner")
	defer unsetStoreEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
