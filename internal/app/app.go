package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/config"
	"github.com/yungbote/ipksa-ingest/internal/data/db"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	hadithingest "github.com/yungbote/ipksa-ingest/internal/ingestion/hadith"
	markeringest "github.com/yungbote/ipksa-ingest/internal/ingestion/marker"
	"github.com/yungbote/ipksa-ingest/internal/observability"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
	"github.com/yungbote/ipksa-ingest/internal/verify"
)

// Version is stamped into trace resources. Overridden at build time.
var Version = "dev"

type App struct {
	Log   *logger.Logger
	DB    *gorm.DB
	Cfg   config.Config
	Repos Repos

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.NewWithLevel(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdown := observability.InitOTel(ctx, log, cfg.Tracing, Version)

	// A dry run never touches the store, so it is not even opened.
	var theDB *gorm.DB
	if !cfg.Load.DryRun {
		theDB, err = db.Open(cfg, log)
		if err != nil {
			_ = shutdown(ctx)
			log.Sync()
			return nil, err
		}
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        wireRepos(theDB, log),
		shutdownOTel: shutdown,
	}, nil
}

// Migrate creates or updates every relation.
func (a *App) Migrate() error {
	if a.DB == nil {
		return ingesterr.NewError(ingesterr.CodeConfig, "app.migrate", "store not opened in dry run", nil)
	}
	return db.AutoMigrateAll(a.DB, a.Log)
}

func (a *App) HadithLoader() *hadithingest.Loader {
	return hadithingest.NewLoader(a.DB, a.Repos.Hadith, a.Log, hadithingest.Options{
		BatchSize: a.Cfg.Load.BatchSize,
		DryRun:    a.Cfg.Load.DryRun,
	})
}

// MarkerLoader writes the whole marker set in one transaction.
func (a *App) MarkerLoader() *markeringest.Loader {
	return markeringest.NewLoader(a.DB, a.Repos.Marker, a.Log, markeringest.Options{
		DryRun: a.Cfg.Load.DryRun,
	})
}

func (a *App) Reporter() *verify.Reporter {
	return verify.NewReporter(a.DB, a.Repos.Hadith, a.Repos.Marker, a.Log)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("Trace shutdown failed", "error", err)
		}
		a.shutdownOTel = nil
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
