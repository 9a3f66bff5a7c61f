package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"penney-bench/server/errs"
)

func TestParseDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "SQLITE_PATH", "PORT", "WORKERS", "HALF_SIZE", "DECKS", "SEED", "AUTO_MIGRATE", "LOG_LEVEL", "NO_COLOR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SQLitePath != "data/penney.db" || cfg.Port != "8080" || cfg.HalfSize != 26 || cfg.Decks != 10000 || cfg.Seed != 42 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.AutoMigrate || cfg.NoColor || cfg.LogLevel != "info" {
		t.Fatalf("flag defaults = %+v", cfg)
	}
	if cfg.UsePostgres() {
		t.Fatalf("postgres selected without DATABASE_URL")
	}
	if cfg.WorkerCount() < 1 {
		t.Fatalf("worker count = %d", cfg.WorkerCount())
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/penney")
	t.Setenv("WORKERS", "3")
	t.Setenv("HALF_SIZE", "4")
	t.Setenv("SEED", "-9")
	t.Setenv("NO_COLOR", "true")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.UsePostgres() || cfg.StoreName() != "postgres" {
		t.Fatalf("store = %s", cfg.StoreName())
	}
	if cfg.WorkerCount() != 3 || cfg.HalfSize != 4 || cfg.Seed != -9 || !cfg.NoColor {
		t.Fatalf("overrides = %+v", cfg)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"HALF_SIZE", "0"},
		{"DECKS", "-1"},
		{"WORKERS", "-2"},
		{"DECKS", "lots"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Parse(); !errors.Is(err, errs.ErrConfiguration) {
				t.Fatalf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PENNEY_TEST_UNUSED=1\nDECKS=77\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DECKS", "")
	os.Unsetenv("DECKS")
	t.Setenv("PENNEY_TEST_UNUSED", "")
	os.Unsetenv("PENNEY_TEST_UNUSED")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Decks != 77 {
		t.Fatalf("decks = %d, want 77 from file", cfg.Decks)
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestLoadDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SEED=1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SEED", "5")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 5 {
		t.Fatalf("seed = %d, environment should win", cfg.Seed)
	}
}
