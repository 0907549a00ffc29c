package app

import (
	"github.com/yungbote/ipksa-ingest/internal/config"
	"github.com/yungbote/ipksa-ingest/internal/platform/envutil"
)

// LoadConfig layers the environment over the defaults, then the YAML file at
// path (or $IPKSA_CONFIG) over both. Command-line flags are applied by the
// caller afterwards.
func LoadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	applyEnv(&cfg)
	if path == "" {
		path = envutil.String("IPKSA_CONFIG", "")
	}
	if err := config.LoadFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *config.Config) {
	cfg.Database.URL = envutil.String("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Driver = envutil.String("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Log.Mode = envutil.String("LOG_MODE", cfg.Log.Mode)
	cfg.Log.Level = envutil.String("LOG_LEVEL", cfg.Log.Level)
	cfg.Load.BatchSize = envutil.Int("IPKSA_BATCH_SIZE", cfg.Load.BatchSize)
	cfg.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = envutil.String("OTEL_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Tracing.SampleRatio)
}
