package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/ipksa-ingest/internal/config"
	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/domain/links"
	"github.com/yungbote/ipksa-ingest/internal/domain/semantic"
	"github.com/yungbote/ipksa-ingest/internal/domain/temporal"
	"github.com/yungbote/ipksa-ingest/internal/domain/validation"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

const sqliteParams = "_foreign_keys=on&_busy_timeout=5000"

// Open connects to the configured store. Driver errors are translated into
// gorm sentinels so duplicates can be told apart from real failures.
func Open(cfg config.Config, log *logger.Logger) (*gorm.DB, error) {
	const op = "db.open"
	dbLog := log.With("service", "Database", "driver", cfg.Database.Driver)

	level := gormLogger.Silent
	if strings.EqualFold(strings.TrimSpace(cfg.Log.Level), "debug") {
		level = gormLogger.Warn
	}
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Database.URL)
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.Database.URL))
	default:
		return nil, ingesterr.NewError(ingesterr.CodeConfig, op, fmt.Sprintf("unknown database driver %q", cfg.Database.Driver), nil)
	}

	dbLog.Info("Connecting to database...", "database_url", cfg.Database.URL)
	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		dbLog.Error("Failed to connect to database", "error", err)
		return nil, ingesterr.Wrap(ingesterr.CodeStorage, op, err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		// A single writer avoids SQLITE_BUSY between the pool's connections.
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	dbLog.Debug("Database connection established")
	return conn, nil
}

// SQLiteDSN enables foreign keys and a busy timeout unless the caller already
// set query parameters.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteParams
}

// Models lists every persisted relation in foreign-key order.
func Models() []any {
	return []any{
		&hadith.RawHadith{},
		&hadith.PreprocessedHadith{},
		&temporal.TemporalMarker{},
		&temporal.PCAPAssignment{},
		&semantic.HMSTSTag{},
		&links.HadithLink{},
		&validation.Result{},
	}
}

// AutoMigrateAll creates or updates the schema. Safe to run repeatedly.
func AutoMigrateAll(conn *gorm.DB, log *logger.Logger) error {
	const op = "db.migrate"
	migrateLog := log.With("service", "Migrator")
	migrateLog.Info("Auto migrating tables...")
	if err := conn.AutoMigrate(Models()...); err != nil {
		migrateLog.Error("Auto migration failed", "error", err)
		return ingesterr.Wrap(ingesterr.CodeStorage, op, err)
	}
	if conn.Dialector.Name() != "postgres" {
		return nil
	}
	migrateLog.Info("Creating postgres search and uniqueness indexes...")
	for _, stmt := range postgresExtras {
		if err := conn.Exec(stmt).Error; err != nil {
			migrateLog.Error("Postgres index creation failed", "error", err)
			return ingesterr.Wrap(ingesterr.CodeStorage, op, err)
		}
	}
	return nil
}

var postgresExtras = []string{
	`CREATE INDEX IF NOT EXISTS idx_raw_hadiths_arabic_fts ON raw_hadiths USING gin(to_tsvector('arabic', arabic))`,
	`CREATE INDEX IF NOT EXISTS idx_raw_hadiths_english_fts ON raw_hadiths USING gin(to_tsvector('english', COALESCE(english_text, '')))`,
	`CREATE INDEX IF NOT EXISTS idx_pcap_anchors ON pcap_assignments USING gin(anchor_before, anchor_after)`,
	`CREATE INDEX IF NOT EXISTS idx_hmsts_categories ON hmsts_tags USING gin(layer1_categories)`,
	`CREATE INDEX IF NOT EXISTS idx_hmsts_layer3_a ON hmsts_tags USING gin(layer3_axis_a)`,
	`CREATE INDEX IF NOT EXISTS idx_hmsts_layer3_b ON hmsts_tags USING gin(layer3_axis_b)`,
	`CREATE INDEX IF NOT EXISTS idx_hmsts_layer4 ON hmsts_tags USING gin(layer4_vectors)`,
	`CREATE INDEX IF NOT EXISTS idx_validation_issues ON validation_results USING gin(issues)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_link ON hadith_links (
		LEAST(hadith_id, related_hadith_id),
		GREATEST(hadith_id, related_hadith_id),
		link_type,
		version
	) WHERE is_bidirectional = TRUE`,
}

// EnrichmentTables are the versioned tables written by downstream stages.
var EnrichmentTables = []string{"pcap_assignments", "hmsts_tags", "hadith_links", "validation_results"}
