package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Load.BatchSize != 1000 || cfg.Database.URL != DefaultDatabaseURL {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"batch size": func(c *Config) { c.Load.BatchSize = 0 },
		"driver":     func(c *Config) { c.Database.Driver = "mysql" },
		"url":        func(c *Config) { c.Database.URL = "  " },
		"ratio":      func(c *Config) { c.Tracing.SampleRatio = 2 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); !ingesterr.IsCode(err, ingesterr.CodeConfig) {
			t.Fatalf("%s: expected config error, got %v", name, err)
		}
	}
}

func TestLoadFileOverlays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ipksa.yaml")
	doc := "database:\n  driver: sqlite\n  url: /tmp/kb.db\nload:\n  batch_size: 250\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Default()
	cfg.Log.Level = "debug"
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.URL != "/tmp/kb.db" || cfg.Load.BatchSize != 250 {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Tracing.ServiceName != "ipksa-ingest" {
		t.Fatalf("keys absent from file must keep their values: %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	if err := LoadFile("", &cfg); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg); !ingesterr.IsCode(err, ingesterr.CodeNotFound) {
		t.Fatalf("missing file should be not_found, got %v", err)
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("database:\n  hostname: x\n"), 0o644)
	if err := LoadFile(bad, &cfg); !ingesterr.IsCode(err, ingesterr.CodeConfig) {
		t.Fatalf("unknown key should be a config error, got %v", err)
	}
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	_ = os.WriteFile(empty, nil, 0o644)
	if err := LoadFile(empty, &cfg); err != nil {
		t.Fatalf("empty file should be a no-op: %v", err)
	}
}
