package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultDatabaseURL = "postgres://ikb_user@localhost:5432/islamic_kb?sslmode=disable"
	DefaultBatchSize   = 1000
)

type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Load     Load     `yaml:"load"`
	Tracing  Tracing  `yaml:"tracing"`
}

type Database struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
}

type Log struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

type Load struct {
	BatchSize  int    `yaml:"batch_size"`
	HadithRoot string `yaml:"hadith_root"`
	MarkerCSV  string `yaml:"marker_csv"`
	DryRun     bool   `yaml:"dry_run"`
	Verify     bool   `yaml:"verify"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

func Default() Config {
	return Config{
		Database: Database{Driver: DriverPostgres, URL: DefaultDatabaseURL},
		Log:      Log{Mode: "dev", Level: "info"},
		Load:     Load{BatchSize: DefaultBatchSize},
		Tracing: Tracing{
			Exporter:    "stdout",
			SampleRatio: 1,
			ServiceName: "ipksa-ingest",
		},
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	const op = "config.load_file"
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ingesterr.NewError(ingesterr.CodeNotFound, op, "config file "+path+" not found", err)
		}
		return ingesterr.Wrap(ingesterr.CodeConfig, op, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ingesterr.NewError(ingesterr.CodeConfig, op, fmt.Sprintf("decode %s: %v", path, err), err)
	}
	return nil
}

func (c Config) Validate() error {
	const op = "config.validate"
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return ingesterr.NewError(ingesterr.CodeConfig, op, fmt.Sprintf("unknown database driver %q", c.Database.Driver), nil)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return ingesterr.NewError(ingesterr.CodeConfig, op, "database url is required", nil)
	}
	if c.Load.BatchSize < 1 {
		return ingesterr.NewError(ingesterr.CodeConfig, op, fmt.Sprintf("batch size must be >= 1, got %d", c.Load.BatchSize), nil)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return ingesterr.NewError(ingesterr.CodeConfig, op, "tracing sample ratio must be within [0,1]", nil)
	}
	return nil
}
